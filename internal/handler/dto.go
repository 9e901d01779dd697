package handler

import "habitflow/internal/analytics"

// HeatmapDayResponse 热力图单元格，Tier 为 0..4 的颜色档位
type HeatmapDayResponse struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	Total     int     `json:"total"`
	Intensity float64 `json:"intensity"`
	Tier      int     `json:"tier"`
}

type ReportResponse struct {
	Heatmap     []HeatmapDayResponse         `json:"heatmap"`
	Habits      []analytics.HabitSummary     `json:"habits"`
	Reflections []analytics.ReflectionPrompt `json:"reflections"`
}

func NewReportResponse(r analytics.Report) ReportResponse {
	days := make([]HeatmapDayResponse, 0, len(r.Heatmap))
	for _, d := range r.Heatmap {
		days = append(days, HeatmapDayResponse{
			Date:      d.Date.String(),
			Count:     d.Count,
			Total:     d.Total,
			Intensity: d.Intensity,
			Tier:      IntensityTier(d.Intensity),
		})
	}

	resp := ReportResponse{
		Heatmap:     days,
		Habits:      r.Habits,
		Reflections: r.Reflections,
	}
	if resp.Habits == nil {
		resp.Habits = []analytics.HabitSummary{}
	}
	if resp.Reflections == nil {
		resp.Reflections = []analytics.ReflectionPrompt{}
	}
	return resp
}

// IntensityTier buckets an intensity ratio into quarter steps.
func IntensityTier(intensity float64) int {
	switch {
	case intensity <= 0:
		return 0
	case intensity < 0.25:
		return 1
	case intensity < 0.5:
		return 2
	case intensity < 0.75:
		return 3
	default:
		return 4
	}
}
