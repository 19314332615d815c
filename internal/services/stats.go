package services

// AppStats holds usage statistics aggregated from the job history
type AppStats struct {
	TotalJobs         int64 `json:"total_jobs"`
	FailedJobs        int64 `json:"failed_jobs"`
	TotalFilesMerged  int64 `json:"total_files_merged"`
	TotalPagesWritten int64 `json:"total_pages_written"`
	CompressedJobs    int64 `json:"compressed_jobs"`
	TotalDataSaved    int64 `json:"total_data_saved"`
}
