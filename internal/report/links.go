package report

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed providers.yaml
var defaultProviders []byte

// Provider is one learning-resource search engine.
type Provider struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	QuerySuffix string `yaml:"query_suffix"`
}

// Link is one search link for a skill.
type Link struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

// LinkSet holds the search links for one missing skill.
type LinkSet struct {
	Skill string `json:"skill"`
	Links []Link `json:"links"`
}

// LinkCatalog builds learning links from a provider list.
type LinkCatalog struct {
	providers []Provider
}

type providerFile struct {
	Providers []Provider `yaml:"providers"`
}

// DefaultLinkCatalog returns the embedded YouTube, Udemy and Coursera catalog.
func DefaultLinkCatalog() *LinkCatalog {
	catalog, err := ParseLinkCatalog(defaultProviders)
	if err != nil {
		panic(fmt.Sprintf("embedded providers.yaml: %v", err))
	}
	return catalog
}

// LoadLinkCatalog reads providers from path, or returns the default catalog when path is empty.
func LoadLinkCatalog(path string) (*LinkCatalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultLinkCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	return ParseLinkCatalog(data)
}

// ParseLinkCatalog decodes a YAML provider list.
func ParseLinkCatalog(data []byte) (*LinkCatalog, error) {
	var file providerFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse links yaml: %w", err)
	}
	if len(file.Providers) == 0 {
		return nil, fmt.Errorf("links yaml: no providers")
	}
	for i, p := range file.Providers {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("links yaml: provider %d has no name", i)
		}
		if !strings.Contains(p.URL, "{query}") {
			return nil, fmt.Errorf("links yaml: provider %s url has no {query}", p.Name)
		}
	}
	return &LinkCatalog{providers: file.Providers}, nil
}

// LearningLinks returns one link set per distinct skill, sorted by skill.
func (c *LinkCatalog) LearningLinks(skills []string) []LinkSet {
	unique := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			unique[s] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(unique))
	for s := range unique {
		sorted = append(sorted, s)
	}
	sort.Strings(sorted)

	out := make([]LinkSet, 0, len(sorted))
	for _, skill := range sorted {
		set := LinkSet{Skill: skill, Links: make([]Link, 0, len(c.providers))}
		for _, p := range c.providers {
			set.Links = append(set.Links, Link{
				Provider: p.Name,
				URL:      strings.ReplaceAll(p.URL, "{query}", encodeQuery(skill+p.QuerySuffix)),
			})
		}
		out = append(out, set)
	}
	return out
}

var queryUnescaper = strings.NewReplacer("+", "%20", "%2F", "/")

// encodeQuery percent-encodes s with spaces as %20 and "/" left as is.
func encodeQuery(s string) string {
	return queryUnescaper.Replace(url.QueryEscape(s))
}
