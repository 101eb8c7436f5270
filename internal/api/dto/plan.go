package dto

type PlanRequest struct {
	Date      string `json:"date"`
	Direction string `json:"direction"`
}

type WarningResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type ExcludedStudentResponse struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

type PlanResponse struct {
	Date             string                    `json:"date"`
	Direction        string                    `json:"direction"`
	EligibleStudents int                       `json:"eligible_students"`
	TripsCreated     int                       `json:"trips_created"`
	ExcludedStudents []ExcludedStudentResponse `json:"excluded_students,omitempty"`
	Warnings         []WarningResponse         `json:"warnings,omitempty"`
	Trips            []TripResponse            `json:"trips"`
}

type OptimizeRequest struct {
	Date string `json:"date"`
}

type OptimizeResponse struct {
	Date      string `json:"date"`
	Sequenced int    `json:"sequenced"`
	Degraded  int    `json:"degraded"`
}
