package entity

import "time"

// DepartmentSummary is computed from the beds table on every query
type DepartmentSummary struct {
	Department    string
	Total         int64
	Occupied      int64
	Vacant        int64
	OccupancyRate float64
}

// DailyMovement counts admissions and discharges on one calendar day
type DailyMovement struct {
	Date       time.Time
	Admissions int64
	Discharges int64
}

// HospitalOverview holds the headline dashboard figures
type HospitalOverview struct {
	TotalBeds       int64
	OccupiedBeds    int64
	AdmissionsToday int64
	DischargesToday int64
	AverageStay     float64
	LastSevenDays   []DailyMovement
}

// CategoryCount is one bar of a patient distribution chart
type CategoryCount struct {
	Category string
	Count    int64
}
