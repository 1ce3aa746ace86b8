// internal/platform/classifier/classifier.go
package classifier

import (
	"path"
	"strings"

	"ingestrouter/internal/core/domain"
)

// Classifier resolves the site and pipeline kind of a filename using two
// independent ordered rule sets. It is immutable and safe for concurrent use.
type Classifier struct {
	sites RuleSet
	kinds RuleSet
}

// New builds a classifier from explicit rule sets.
func New(sites, kinds RuleSet) *Classifier {
	return &Classifier{sites: sites, kinds: kinds}
}

// NewDefault builds a classifier with the built-in rule tables.
func NewDefault() *Classifier {
	return New(DefaultSiteRules(), DefaultPipelineRules())
}

// Classify returns the first matching site and pipeline kind for filename.
// Directory components (either separator) are stripped before matching.
func (c *Classifier) Classify(filename string) domain.Classification {
	name := baseName(filename)

	out := domain.Classification{Filename: name}
	for _, k := range c.sites.All(name) {
		out.SiteCandidates = append(out.SiteCandidates, domain.SiteKey(k))
	}
	for _, k := range c.kinds.All(name) {
		out.KindCandidates = append(out.KindCandidates, domain.PipelineKind(k))
	}
	if len(out.SiteCandidates) > 0 {
		out.Site = out.SiteCandidates[0]
	}
	if len(out.KindCandidates) > 0 {
		out.Kind = out.KindCandidates[0]
	}
	return out
}

// Sites returns the site rule set.
func (c *Classifier) Sites() RuleSet { return c.sites }

// Kinds returns the pipeline kind rule set.
func (c *Classifier) Kinds() RuleSet { return c.kinds }

func baseName(filename string) string {
	if filename == "" {
		return ""
	}
	name := strings.ReplaceAll(filename, `\`, "/")
	if strings.HasSuffix(name, "/") {
		return ""
	}
	return path.Base(name)
}
