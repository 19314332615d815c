package compression

// Result reports the outcome of compressing one file
type Result struct {
	InputPath        string  `json:"input_path"`
	OutputPath       string  `json:"output_path"`
	PageCount        int     `json:"page_count"`
	StreamsEncoded   int     `json:"streams_encoded"`
	OriginalSize     int64   `json:"original_size"`
	CompressedSize   int64   `json:"compressed_size"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// DataSaved returns the number of bytes compression removed
func (r *Result) DataSaved() int64 {
	return r.OriginalSize - r.CompressedSize
}
