package schemas

// FileInfo describes one large file.
type FileInfo struct {
	Path      string `json:"path" schema:"required"`
	SizeBytes int64  `json:"size_bytes" schema:"required"`
	SizeHuman string `json:"size_human" schema:"required"`
}

// DirectoryInfo describes one large directory.
type DirectoryInfo struct {
	Path      string `json:"path" schema:"required"`
	SizeBytes int64  `json:"size_bytes" schema:"required"`
	SizeHuman string `json:"size_human" schema:"required"`
	FileCount int    `json:"file_count" schema:"required"`
}

// MissingFile is a hygiene file the repository lacks.
type MissingFile struct {
	Filename    string  `json:"filename" schema:"required"`
	Importance  string  `json:"importance" schema:"required"`
	TemplateURL *string `json:"template_url"`
}

// BloatAnalysis is the size and hygiene picture of a repository.
type BloatAnalysis struct {
	TotalSizeBytes      int64           `json:"total_size_bytes" schema:"required"`
	TotalSizeHuman      string          `json:"total_size_human" schema:"required"`
	LargestFiles        []FileInfo      `json:"largest_files"`
	LargestDirectories  []DirectoryInfo `json:"largest_directories"`
	SuspectedArtifacts  []string        `json:"suspected_artifacts"`
	MissingHygieneFiles []MissingFile   `json:"missing_hygiene_files"`
}

// DietOutput is the result of `repodoc diet`.
type DietOutput struct {
	BaseCommandOutput
	Analysis     BloatAnalysis `json:"analysis" schema:"required"`
	DietMarkdown string        `json:"diet_markdown" schema:"required"`
}

func (*DietOutput) CommandName() string { return "diet" }
