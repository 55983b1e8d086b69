package usecase

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/ghdir/pkg/domain/model"
)

// DefaultBlockedPattern matches URLs and file paths that are never downloaded
const DefaultBlockedPattern = `(?i)malware|virus|trojan`

// ContentPolicy refuses targets whose name matches a pattern. A nil policy
// allows everything.
type ContentPolicy struct {
	pattern *regexp.Regexp
}

// NewContentPolicy compiles pattern. An empty pattern returns a nil policy.
func NewContentPolicy(pattern string) (*ContentPolicy, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid blocked content pattern", goerr.V("pattern", pattern))
	}
	return &ContentPolicy{pattern: re}, nil
}

// Check returns a blocked_content error when target matches the pattern
func (p *ContentPolicy) Check(target string) error {
	if p == nil || !p.pattern.MatchString(target) {
		return nil
	}
	return goerr.New("content is blocked by policy",
		goerr.T(model.ErrTagBlockedContent),
		goerr.V("target", target),
		goerr.V("pattern", p.pattern.String()))
}

// CheckFiles checks every path and reports the first blocked one
func (p *ContentPolicy) CheckFiles(files []*model.FileDescriptor) error {
	for _, file := range files {
		if err := p.Check(file.Path); err != nil {
			return err
		}
	}
	return nil
}
