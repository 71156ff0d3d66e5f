package schemas

// StackInfo lists the technology stack.
type StackInfo struct {
	Languages  []string `json:"languages"`
	Frameworks []string `json:"frameworks"`
	Tools      []string `json:"tools"`
	Databases  []string `json:"databases"`
}

// EntryPoint is a place to start reading the code.
type EntryPoint struct {
	FilePath    string `json:"file_path" schema:"required"`
	Description string `json:"description" schema:"required"`
	Type        string `json:"type" schema:"required"`
}

// DirectoryGuide explains one directory.
type DirectoryGuide struct {
	Path     string   `json:"path" schema:"required"`
	Purpose  string   `json:"purpose" schema:"required"`
	KeyFiles []string `json:"key_files"`
}

// TourSummary is the structured part of an onboarding tour.
type TourSummary struct {
	Stack                   StackInfo        `json:"stack" schema:"required"`
	EntryPoints             []EntryPoint     `json:"entry_points"`
	DirectoryStructure      []DirectoryGuide `json:"directory_structure"`
	RecommendedReadingOrder []string         `json:"recommended_reading_order"`
	ArchitectureNotes       *string          `json:"architecture_notes"`
}

// TourOutput is the result of `repodoc tour`.
type TourOutput struct {
	BaseCommandOutput
	Tour         TourSummary `json:"tour" schema:"required"`
	TourMarkdown string      `json:"tour_markdown" schema:"required"`
}

func (*TourOutput) CommandName() string { return "tour" }
