package dto

// SubmitExportRequest requests a rendered export of the current timetable.
type SubmitExportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}
