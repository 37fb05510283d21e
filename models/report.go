package models

import "time"

// ReportRange bounds a report by order creation time.
type ReportRange struct {
	From            *time.Time
	To              *time.Time
	EstablishmentID string
}

// SummaryReport aggregates service orders over a range.
type SummaryReport struct {
	From                   *time.Time           `json:"from,omitempty"`
	To                     *time.Time           `json:"to,omitempty"`
	Total                  int                  `json:"total"`
	ByStatus               map[OrderStatus]int  `json:"byStatus"`
	ByPriority             map[Priority]int     `json:"byPriority"`
	ByEstablishment        []EstablishmentCount `json:"byEstablishment"`
	AverageRating          float64              `json:"averageRating"`
	RatedCount             int                  `json:"ratedCount"`
	AverageResolutionHours float64              `json:"averageResolutionHours"`
	GeneratedAt            time.Time            `json:"generatedAt"`
}

type EstablishmentCount struct {
	EstablishmentID   string `json:"establishmentId"`
	EstablishmentName string `json:"establishmentName"`
	Count             int    `json:"count"`
}

// TechnicianPerformance summarises one technician's orders over a range.
type TechnicianPerformance struct {
	TechnicianID           string  `json:"technicianId"`
	TechnicianName         string  `json:"technicianName"`
	Assigned               int     `json:"assigned"`
	Completed              int     `json:"completed"`
	Cancelled              int     `json:"cancelled"`
	AverageRating          float64 `json:"averageRating"`
	AverageResolutionHours float64 `json:"averageResolutionHours"`
}

// ReportExport points at an exported report object.
type ReportExport struct {
	ObjectPath string `json:"objectPath"`
	URL        string `json:"url"`
	Rows       int    `json:"rows"`
}
