package dto

type DepartmentSummaryResponse struct {
	Department    string  `json:"department"`
	TotalBeds     int64   `json:"total"`
	Occupied      int64   `json:"occupied"`
	Vacant        int64   `json:"vacant"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type OccupancyResponse struct {
	Departments []DepartmentSummaryResponse `json:"departments"`
}

type DailyMovementResponse struct {
	Date       string `json:"date"`
	Admissions int64  `json:"admissions"`
	Discharges int64  `json:"discharges"`
}

type OverviewResponse struct {
	TotalBeds       int64                   `json:"total_beds"`
	OccupiedBeds    int64                   `json:"occupied_beds"`
	AdmissionsToday int64                   `json:"admissions_today"`
	DischargesToday int64                   `json:"discharges_today"`
	AverageStay     float64                 `json:"average_length_of_stay"`
	LastSevenDays   []DailyMovementResponse `json:"last_seven_days"`
}

type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type DistributionResponse struct {
	Field      string                  `json:"field"`
	Categories []CategoryCountResponse `json:"categories"`
}
