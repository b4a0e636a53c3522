// Package content holds everything the portfolio page says: profile,
// roles for the typing effect, navigation, socials, skills and projects.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

//go:embed portfolio.yaml
var defaultPortfolio []byte

var ErrInvalidContent = errors.New("invalid content")

type Profile struct {
	Name           string `yaml:"name"`
	DisplayName    string `yaml:"displayName"`
	Headline       string `yaml:"headline"`
	Bio            string `yaml:"bio"`
	Email          string `yaml:"email"`
	Education      string `yaml:"education"`
	Location       string `yaml:"location"`
	Avatar         string `yaml:"avatar"`
	Resume         string `yaml:"resume"`
	ResumeFilename string `yaml:"resumeFilename"`
}

type NavItem struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

type Social struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Hero bool   `yaml:"hero"`
}

type Skill struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type SkillCategory struct {
	Name   string  `yaml:"name"`
	Skills []Skill `yaml:"skills"`
}

type Project struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Image       string   `yaml:"image"`
	Tags        []string `yaml:"tags"`
	DemoURL     string   `yaml:"demoUrl"`
	CodeURL     string   `yaml:"codeUrl"`
}

// Portfolio is the full page content.
type Portfolio struct {
	Profile  Profile         `yaml:"profile"`
	Roles    []string        `yaml:"roles"`
	Nav      []NavItem       `yaml:"nav"`
	Socials  []Social        `yaml:"socials"`
	Skills   []SkillCategory `yaml:"skills"`
	Projects []Project       `yaml:"projects"`

	bioHTML template.HTML
}

// Default returns the built-in portfolio.
func Default() (*Portfolio, error) {
	return Parse(defaultPortfolio)
}

// Load reads a portfolio from path, or the built-in one when path is empty.
func Load(path string) (*Portfolio, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates YAML content and renders the bio.
func Parse(data []byte) (*Portfolio, error) {
	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Profile.DisplayName == "" {
		p.Profile.DisplayName = p.Profile.Name
	}
	if p.Profile.ResumeFilename == "" && p.Profile.Resume != "" {
		p.Profile.ResumeFilename = path.Base(p.Profile.Resume)
	}

	html, err := renderMarkdown(p.Profile.Bio)
	if err != nil {
		return nil, fmt.Errorf("%w: bio: %v", ErrInvalidContent, err)
	}
	p.bioHTML = html
	return &p, nil
}

func (p *Portfolio) Validate() error {
	var errs []error
	if p.Profile.Name == "" {
		errs = append(errs, errors.New("profile.name is required"))
	}
	if len(p.Roles) == 0 {
		errs = append(errs, errors.New("at least one role is required"))
	}
	for i, r := range p.Roles {
		if r == "" {
			errs = append(errs, fmt.Errorf("roles[%d] is empty", i))
		}
	}
	for i, c := range p.Skills {
		if c.Name == "" {
			errs = append(errs, fmt.Errorf("skills[%d].name is required", i))
		}
	}
	for i, pr := range p.Projects {
		if pr.Title == "" {
			errs = append(errs, fmt.Errorf("projects[%d].title is required", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidContent, errors.Join(errs...))
	}
	return nil
}

// BioHTML is the about-section bio rendered from Markdown.
func (p *Portfolio) BioHTML() template.HTML {
	return p.bioHTML
}

// HeroSocials returns the social links shown under the hero text.
func (p *Portfolio) HeroSocials() []Social {
	var out []Social
	for _, s := range p.Socials {
		if s.Hero {
			out = append(out, s)
		}
	}
	return out
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func renderMarkdown(src string) (template.HTML, error) {
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// goldmark drops raw HTML unless html.WithUnsafe is set.
	return template.HTML(buf.String()), nil
}
