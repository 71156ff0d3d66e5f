package schemas

// DockerIssue is a problem on a Dockerfile line.
type DockerIssue struct {
	IssueType   string   `json:"issue_type" schema:"required"`
	LineNumber  *int     `json:"line_number"`
	Current     string   `json:"current" schema:"required"`
	Suggested   *string  `json:"suggested"`
	Explanation string   `json:"explanation" schema:"required"`
	Severity    Severity `json:"severity" schema:"required,enum=critical|high|medium|low|info"`
}

// DockerfileAnalysis is the review of one Dockerfile.
type DockerfileAnalysis struct {
	DockerfilePath      string        `json:"dockerfile_path" schema:"required"`
	BaseImage           *string       `json:"base_image"`
	Issues              []DockerIssue `json:"issues"`
	Optimizations       []string      `json:"optimizations"`
	MissingDockerignore bool          `json:"missing_dockerignore"`
	SizeEstimate        *string       `json:"size_estimate"`
}

// PatchedDockerfile is an improved Dockerfile proposed by the backend.
type PatchedDockerfile struct {
	OriginalPath   string   `json:"original_path" schema:"required"`
	PatchedContent string   `json:"patched_content" schema:"required"`
	ChangesSummary []string `json:"changes_summary"`
}

// DockerOutput is the result of `repodoc docker`.
type DockerOutput struct {
	BaseCommandOutput
	Dockerfiles             []DockerfileAnalysis `json:"dockerfiles"`
	PatchedDockerfile       *PatchedDockerfile   `json:"patched_dockerfile"`
	DockerignoreSuggestions []string             `json:"dockerignore_suggestions"`
}

func (*DockerOutput) CommandName() string { return "docker" }

// IssueCount counts top-level issues plus per-Dockerfile issues.
func (d *DockerOutput) IssueCount() int {
	n := len(d.Issues)
	for _, f := range d.Dockerfiles {
		n += len(f.Issues)
	}
	return n
}
