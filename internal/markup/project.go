package markup

import (
	"github.com/scribe-docs/scribe/internal/apierr"
	"github.com/scribe-docs/scribe/internal/types"
)

// RenderProjectOverview renders the root page of a project tree.
func RenderProjectOverview(o *types.ProjectOverview) (Content, error) {
	if o == nil || blank(o.Name) {
		return "", apierr.New(apierr.KindInvalidInput, "render project overview", "project name is required")
	}

	var p page
	p.heading("Overview")
	p.para(o.Description)

	if len(o.Metadata) > 0 {
		p.heading("Project Information")
		rows := make([][2]string, 0, len(o.Metadata))
		for _, kv := range o.Metadata {
			rows = append(rows, [2]string{kv.Key, Escape(kv.Value)})
		}
		p.raw(fieldTable(rows))
	}

	if len(o.TechStack) > 0 {
		p.heading("Technology Stack")
		p.list(o.TechStack, false)
	}

	if len(o.QuickStart) > 0 {
		p.heading("Quick Start")
		p.list(o.QuickStart, true)
	}

	if len(o.ChildPages) > 0 {
		p.heading("Documentation Sections")
		items := "<ul>"
		for _, c := range o.ChildPages {
			items += "<li>" + Link(c.URL, orDefault(c.Title, "Untitled")) + "</li>"
		}
		p.raw(items + "</ul>")
	}

	notice := "This documentation was automatically generated"
	if !o.GeneratedAt.IsZero() {
		notice += " on " + o.GeneratedAt.Format(timestampLayout)
	}
	notice += ". Please review and update as needed."
	p.raw(Panel(PanelInfo, "<p>"+Escape(notice)+"</p>"))

	return p.finish()
}

// RenderArchitecture renders the architecture child page.
func RenderArchitecture(a *types.ArchitectureOverview) (Content, error) {
	var p page
	if a == nil {
		a = &types.ArchitectureOverview{}
	}
	if !blank(a.Description) {
		p.heading("Architecture Description")
		p.para(a.Description)
	}
	if len(a.Components) > 0 {
		p.heading("System Components")
		p.list(a.Components, false)
	}
	if len(a.DesignPatterns) > 0 {
		p.heading("Design Patterns")
		p.list(a.DesignPatterns, false)
	}
	if !blank(a.DataFlow) {
		p.heading("Data Flow")
		p.para(a.DataFlow)
	}
	p.raw(Panel(PanelTip, "<p>"+Escape("This architecture documentation was automatically generated. Consider adding diagrams or detailed sequence flows for complex interactions.")+"</p>"))
	return p.finish()
}

// RenderDependencies renders the dependencies child page.
func RenderDependencies(d *types.DependencyReport) (Content, error) {
	var p page
	if d == nil {
		d = &types.DependencyReport{}
	}
	if len(d.Production) > 0 {
		p.heading("Production Dependencies")
		p.table([]string{"Package", "Version"}, dependencyRows(d.Production))
	}
	if len(d.Development) > 0 {
		p.heading("Development Dependencies")
		p.table([]string{"Package", "Version"}, dependencyRows(d.Development))
	}
	if !blank(d.Notes) {
		p.para(d.Notes)
	}
	p.raw(Panel(PanelWarning, "<p>"+Escape("Always review dependencies for security vulnerabilities and keep them up to date.")+"</p>"))
	return p.finish()
}

func dependencyRows(deps []types.Dependency) [][]string {
	rows := make([][]string, 0, len(deps))
	for _, d := range deps {
		rows = append(rows, []string{
			"<strong>" + Escape(orDefault(d.Name, "Unknown")) + "</strong>",
			Escape(orDefault(d.Version, "N/A")),
		})
	}
	return rows
}

// RenderSetup renders the setup and installation child page.
func RenderSetup(s *types.SetupGuide) (Content, error) {
	var p page
	if s == nil {
		s = &types.SetupGuide{}
	}
	if len(s.Prerequisites) > 0 {
		p.heading("Prerequisites")
		p.list(s.Prerequisites, false)
	}
	if len(s.Steps) > 0 {
		p.heading("Installation Steps")
		p.list(s.Steps, true)
	}
	if len(s.ConfigExamples) > 0 {
		p.heading("Configuration")
		for _, ex := range s.ConfigExamples {
			p.subheading(Escape(ex.Filename))
			p.raw(CodeBlock(ex.Content, DetectLanguage(ex.Filename), CodeOptions{Title: ex.Filename}))
		}
	}
	if len(s.Verification) > 0 {
		p.heading("Verification")
		p.para("After installation, verify everything is working correctly:")
		p.list(s.Verification, true)
	}
	if !blank(s.Troubleshooting) {
		p.heading("Troubleshooting")
		p.raw(Panel(PanelNote, "<p>"+Escape(s.Troubleshooting)+"</p>"))
	}
	return p.finish()
}

// RenderStructure renders the project structure child page.
func RenderStructure(s *types.ProjectStructure) (Content, error) {
	var p page
	if s == nil {
		s = &types.ProjectStructure{}
	}
	if !blank(s.DirectoryTree) {
		p.heading("Project Structure")
		p.raw(CodeBlock(s.DirectoryTree, PlainLanguage, CodeOptions{Title: "Project Directory Structure", NoLineNumbers: true}))
	}
	if len(s.Directories) > 0 {
		p.heading("Directory Descriptions")
		rows := make([][]string, 0, len(s.Directories))
		for _, d := range s.Directories {
			rows = append(rows, []string{"<code>" + Escape(d.Key) + "</code>", Escape(d.Value)})
		}
		p.table([]string{"Directory", "Purpose"}, rows)
	}
	if !blank(s.FileConventions) {
		p.heading("File Naming Conventions")
		p.para(s.FileConventions)
	}
	return p.finish()
}

// RenderKeyFiles renders the key files reference page. Code samples are
// kept whole.
func RenderKeyFiles(files []types.KeyFile) (Content, error) {
	var p page
	if len(files) > 1 {
		p.raw(TableOfContents())
	}
	for _, f := range files {
		p.raw("<h2><code>" + Escape(orDefault(f.Path, "Unknown")) + "</code></h2>")
		p.raw("<p><strong>Type:</strong> " + Escape(orDefault(f.Type, "File")) + "</p>")
		if !blank(f.Description) {
			p.para(f.Description)
		}
		if f.CodeSample != "" {
			p.raw(CodeBlock(f.CodeSample, DetectLanguage(f.Path), CodeOptions{Title: f.Path}))
		}
		p.raw("<hr />")
	}
	return p.finish()
}

// Section is one child page of a project tree.
type Section struct {
	Name   string
	Render func() (Content, error)
}

// ProjectSections lists the child pages docs produces, in publishing order.
// Nil or empty sections are left out.
func ProjectSections(docs *types.ProjectDocs) []Section {
	var sections []Section
	if docs.Architecture != nil {
		sections = append(sections, Section{types.TitleArchitecture, func() (Content, error) {
			return RenderArchitecture(docs.Architecture)
		}})
	}
	if docs.Dependencies != nil {
		sections = append(sections, Section{types.TitleDependencies, func() (Content, error) {
			return RenderDependencies(docs.Dependencies)
		}})
	}
	if docs.Setup != nil {
		sections = append(sections, Section{types.TitleSetup, func() (Content, error) {
			return RenderSetup(docs.Setup)
		}})
	}
	if docs.Structure != nil {
		sections = append(sections, Section{types.TitleStructure, func() (Content, error) {
			return RenderStructure(docs.Structure)
		}})
	}
	if len(docs.KeyFiles) > 0 {
		sections = append(sections, Section{types.TitleKeyFiles, func() (Content, error) {
			return RenderKeyFiles(docs.KeyFiles)
		}})
	}
	return sections
}
