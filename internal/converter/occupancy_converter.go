package converter

import (
	"smartcare/internal/delivery/dto"
	"smartcare/internal/domain/entity"
)

func DepartmentSummariesToResponse(summaries []entity.DepartmentSummary) *dto.OccupancyResponse {
	departments := make([]dto.DepartmentSummaryResponse, len(summaries))
	for i, s := range summaries {
		departments[i] = dto.DepartmentSummaryResponse{
			Department:    s.Department,
			TotalBeds:     s.Total,
			Occupied:      s.Occupied,
			Vacant:        s.Vacant,
			OccupancyRate: s.OccupancyRate,
		}
	}
	return &dto.OccupancyResponse{Departments: departments}
}

func OverviewToResponse(overview *entity.HospitalOverview) *dto.OverviewResponse {
	if overview == nil {
		return nil
	}

	days := make([]dto.DailyMovementResponse, len(overview.LastSevenDays))
	for i, d := range overview.LastSevenDays {
		days[i] = dto.DailyMovementResponse{
			Date:       d.Date.Format(entity.DateLayout),
			Admissions: d.Admissions,
			Discharges: d.Discharges,
		}
	}

	return &dto.OverviewResponse{
		TotalBeds:       overview.TotalBeds,
		OccupiedBeds:    overview.OccupiedBeds,
		AdmissionsToday: overview.AdmissionsToday,
		DischargesToday: overview.DischargesToday,
		AverageStay:     overview.AverageStay,
		LastSevenDays:   days,
	}
}

func DistributionToResponse(field string, counts []entity.CategoryCount) *dto.DistributionResponse {
	categories := make([]dto.CategoryCountResponse, len(counts))
	for i, c := range counts {
		categories[i] = dto.CategoryCountResponse{Category: c.Category, Count: c.Count}
	}
	return &dto.DistributionResponse{Field: field, Categories: categories}
}
