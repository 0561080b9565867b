// Package manifest turns a revision's raw manifest into the parsed
// descriptors the core needs: the declared identity, capability and
// requirement clauses, and native library declarations.
//
// The clause grammar is deliberately small: headers hold comma-separated
// clauses, each clause a ;-separated list whose first element names the
// clause and whose remaining elements are key=value attributes. Quoting
// is not supported.
package manifest

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/modrunio/modrun/pkg/errors"
	"github.com/modrunio/modrun/pkg/model"
)

var (
	// ErrInvalidVersion indicates the version header does not parse.
	ErrInvalidVersion = errors.New("unit version does not parse")

	// ErrEmptyClause indicates a header contains an empty clause.
	ErrEmptyClause = errors.New("empty clause in manifest header")
)

// Parsed is the outcome of parsing one revision's manifest.
type Parsed struct {
	Identity        model.Identity
	Capabilities    []Clause
	Requirements    []Clause
	NativeLibraries []NativeLib
}

// Clause is one named clause with its attributes.
type Clause struct {
	Namespace  string
	Attributes map[string]string
}

// NativeLib is one native library declaration.
type NativeLib struct {
	EntryName string
	OSName    string
	Processor string
}

// Parser turns raw manifests into Parsed descriptors. Failures abort
// revision creation in the core.
type Parser interface {
	Parse(m model.Manifest) (*Parsed, error)
}

// New returns the default parser.
func New() Parser {
	return &parser{}
}

type parser struct{}

func (p *parser) Parse(m model.Manifest) (*Parsed, error) {
	out := &Parsed{}

	if name := strings.TrimSpace(firstClauseElement(m[model.SymbolicNameHeader])); name != "" {
		out.Identity.Name = name
		if raw := strings.TrimSpace(m[model.VersionHeader]); raw != "" {
			v, err := semver.NewVersion(raw)
			if err != nil {
				return nil, ErrInvalidVersion.Wrap(err)
			}
			out.Identity.Version = v
		}
	}

	var err error
	if out.Capabilities, err = parseClauses(m[model.CapabilityHeader]); err != nil {
		return nil, err
	}
	if out.Requirements, err = parseClauses(m[model.RequirementHeader]); err != nil {
		return nil, err
	}
	natives, err := parseClauses(m[model.NativeCodeHeader])
	if err != nil {
		return nil, err
	}
	for _, c := range natives {
		out.NativeLibraries = append(out.NativeLibraries, NativeLib{
			EntryName: c.Namespace,
			OSName:    c.Attributes["osname"],
			Processor: c.Attributes["processor"],
		})
	}
	return out, nil
}

func firstClauseElement(header string) string {
	if i := strings.IndexByte(header, ';'); i >= 0 {
		return header[:i]
	}
	return header
}

func parseClauses(header string) ([]Clause, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	var out []Clause
	for _, raw := range strings.Split(header, ",") {
		elems := strings.Split(raw, ";")
		ns := strings.TrimSpace(elems[0])
		if ns == "" {
			return nil, ErrEmptyClause
		}
		c := Clause{Namespace: ns}
		for _, attr := range elems[1:] {
			attr = strings.TrimSpace(attr)
			if attr == "" {
				continue
			}
			kv := strings.SplitN(attr, "=", 2)
			if len(kv) == 2 {
				c.Attributes = setAttr(c.Attributes, strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func setAttr(attrs map[string]string, k, v string) map[string]string {
	if attrs == nil {
		attrs = make(map[string]string, 1)
	}
	attrs[k] = v
	return attrs
}
