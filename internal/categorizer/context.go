package categorizer

import (
	"encoding/json"

	"mediasort/internal/candidates"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
)

// FileResults holds a per-file check. Verdict aggregates Files: yes if any
// file is yes, else maybe if any is maybe, else no.
type FileResults struct {
	Verdict media.Verdict            `json:"verdict"`
	Files   map[string]oracle.Result `json:"files"`
}

// Yes returns the files answered yes, in request order.
func (f *FileResults) Yes(order []string) []string {
	if f == nil {
		return nil
	}
	var out []string
	for _, file := range order {
		if r, ok := f.Files[file]; ok && r.Verdict.Yes() {
			out = append(out, file)
		}
	}
	return out
}

func aggregate(results map[string]oracle.Result) media.Verdict {
	var sawMaybe, sawNo bool
	for _, r := range results {
		switch r.Verdict {
		case media.VerdictYes:
			return media.VerdictYes
		case media.VerdictMaybe:
			sawMaybe = true
		case media.VerdictNo:
			sawNo = true
		}
	}
	switch {
	case sawMaybe:
		return media.VerdictMaybe
	case sawNo:
		return media.VerdictNo
	default:
		return media.VerdictNone
	}
}

// Context accumulates every piece of evidence gathered while categorizing one
// request. It has a single owner and is not safe for concurrent use.
type Context struct {
	Request    media.Request
	Hints      []media.Category
	Candidates candidates.Set
	Results    map[media.Category]oracle.Result
	Groups     map[media.Category]*FileResults
	Usage      oracle.Usage
	Attempted  []media.Category
}

func newContext(req media.Request, hints []media.Category, cands candidates.Set) *Context {
	return &Context{
		Request:    req,
		Hints:      hints,
		Candidates: cands,
		Results:    make(map[media.Category]oracle.Result),
		Groups:     make(map[media.Category]*FileResults),
	}
}

func (c *Context) attempted(category media.Category) bool {
	for _, a := range c.Attempted {
		if a == category {
			return true
		}
	}
	return false
}

func (c *Context) recordGroup(category media.Category, result oracle.Result) {
	c.Results[category] = result
	c.Usage = c.Usage.Add(result.Usage)
}

func (c *Context) recordFiles(category media.Category, results map[string]oracle.Result) *FileResults {
	group := &FileResults{Verdict: aggregate(results), Files: results}
	for _, r := range results {
		c.Usage = c.Usage.Add(r.Usage)
	}
	c.Groups[category] = group
	return group
}

// Verdict returns the recorded verdict for category, group-level or aggregate.
func (c *Context) Verdict(category media.Category) media.Verdict {
	if r, ok := c.Results[category]; ok {
		return r.Verdict
	}
	if g, ok := c.Groups[category]; ok {
		return g.Verdict
	}
	return media.VerdictNone
}

type contextJSON struct {
	Request    media.Request                    `json:"request"`
	Hints      []media.Category                 `json:"hints,omitempty"`
	Candidates candidates.Set                   `json:"candidates"`
	Attempted  []media.Category                 `json:"attempted"`
	Results    map[media.Category]oracle.Result `json:"results"`
	PerFile    map[media.Category]*FileResults  `json:"per_file_results"`
	Usage      oracle.Usage                     `json:"usage"`
}

// MarshalJSON renders the evidence handed to the decision oracle.
func (c *Context) MarshalJSON() ([]byte, error) {
	return json.Marshal(contextJSON{
		Request:    c.Request,
		Hints:      c.Hints,
		Candidates: c.Candidates,
		Attempted:  c.Attempted,
		Results:    c.Results,
		PerFile:    c.Groups,
		Usage:      c.Usage,
	})
}
