package types

import (
	"fmt"
	"strings"
	"time"
)

// KeyValue is an ordered key/value pair. Used instead of maps wherever the
// rendered order must follow the input.
type KeyValue struct {
	Key   string `json:"key" yaml:"key" toml:"key"`
	Value string `json:"value" yaml:"value" toml:"value"`
}

// ChildLink points at a child page from the project overview.
type ChildLink struct {
	Title string `json:"title" yaml:"title" toml:"title"`
	URL   string `json:"url" yaml:"url" toml:"url"`
}

// Dependency is a package and its version.
type Dependency struct {
	Name    string `json:"name" yaml:"name" toml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version"`
}

// ConfigExample is a sample configuration file shown on the setup page.
type ConfigExample struct {
	Filename string `json:"filename" yaml:"filename" toml:"filename"`
	Content  string `json:"content" yaml:"content" toml:"content"`
}

// KeyFile is an important file of the project.
type KeyFile struct {
	Path        string `json:"path" yaml:"path" toml:"path"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty" toml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	CodeSample  string `json:"code_sample,omitempty" yaml:"code_sample,omitempty" toml:"code_sample"`
}

// ProjectOverview is the root page of a project documentation tree.
type ProjectOverview struct {
	Name        string      `json:"name" yaml:"name" toml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	TechStack   []string    `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty" toml:"tech_stack"`
	Metadata    []KeyValue  `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata"`
	QuickStart  []string    `json:"quick_start,omitempty" yaml:"quick_start,omitempty" toml:"quick_start"`
	ChildPages  []ChildLink `json:"child_pages,omitempty" yaml:"child_pages,omitempty" toml:"child_pages"`
	GeneratedAt time.Time   `json:"generated_at,omitempty" yaml:"generated_at,omitempty" toml:"generated_at"`
}

// ArchitectureOverview describes the system's components.
type ArchitectureOverview struct {
	Description    string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description"`
	Components     []string `json:"components,omitempty" yaml:"components,omitempty" toml:"components"`
	DesignPatterns []string `json:"design_patterns,omitempty" yaml:"design_patterns,omitempty" toml:"design_patterns"`
	DataFlow       string   `json:"data_flow,omitempty" yaml:"data_flow,omitempty" toml:"data_flow"`
}

// DependencyReport lists production and development dependencies.
type DependencyReport struct {
	Production  []Dependency `json:"production,omitempty" yaml:"production,omitempty" toml:"production"`
	Development []Dependency `json:"development,omitempty" yaml:"development,omitempty" toml:"development"`
	Notes       string       `json:"notes,omitempty" yaml:"notes,omitempty" toml:"notes"`
}

// SetupGuide covers installation and verification.
type SetupGuide struct {
	Prerequisites   []string        `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty" toml:"prerequisites"`
	Steps           []string        `json:"steps,omitempty" yaml:"steps,omitempty" toml:"steps"`
	ConfigExamples  []ConfigExample `json:"config_examples,omitempty" yaml:"config_examples,omitempty" toml:"config_examples"`
	Verification    []string        `json:"verification,omitempty" yaml:"verification,omitempty" toml:"verification"`
	Troubleshooting string          `json:"troubleshooting,omitempty" yaml:"troubleshooting,omitempty" toml:"troubleshooting"`
}

// ProjectStructure documents the directory layout.
type ProjectStructure struct {
	DirectoryTree   string     `json:"directory_tree,omitempty" yaml:"directory_tree,omitempty" toml:"directory_tree"`
	Directories     []KeyValue `json:"directories,omitempty" yaml:"directories,omitempty" toml:"directories"`
	FileConventions string     `json:"file_conventions,omitempty" yaml:"file_conventions,omitempty" toml:"file_conventions"`
}

// ProjectDocs is the full project-overview tree: one overview page and its
// child pages. Nil children are skipped.
type ProjectDocs struct {
	Overview     ProjectOverview       `json:"overview" yaml:"overview" toml:"overview"`
	Architecture *ArchitectureOverview `json:"architecture,omitempty" yaml:"architecture,omitempty" toml:"architecture"`
	Dependencies *DependencyReport     `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies"`
	Setup        *SetupGuide           `json:"setup,omitempty" yaml:"setup,omitempty" toml:"setup"`
	Structure    *ProjectStructure     `json:"structure,omitempty" yaml:"structure,omitempty" toml:"structure"`
	KeyFiles     []KeyFile             `json:"key_files,omitempty" yaml:"key_files,omitempty" toml:"key_files"`
}

// Validate checks the fields rendering cannot do without.
func (d *ProjectDocs) Validate() error {
	if strings.TrimSpace(d.Overview.Name) == "" {
		return fmt.Errorf("overview.name is required")
	}
	return nil
}

// Child page titles, prefixed with the project name when published so that
// titles stay unique within a space.
const (
	TitleArchitecture = "Architecture Overview"
	TitleDependencies = "Dependencies"
	TitleSetup        = "Setup & Installation"
	TitleStructure    = "Project Structure"
	TitleKeyFiles     = "Key Files Reference"
)

// ChildTitle returns the space-unique title for a child page of the project.
func (d *ProjectDocs) ChildTitle(section string) string {
	return strings.TrimSpace(d.Overview.Name) + " - " + section
}
