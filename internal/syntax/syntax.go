// Package syntax turns source files into JSON-like syntax trees using
// tree-sitter, so that code can be classified and rendered like any other
// document.
package syntax

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.uber.org/zap"

	apperrors "github.com/mcncl/shapeview/internal/errors"
	"github.com/mcncl/shapeview/internal/logging"
	"github.com/mcncl/shapeview/internal/models"
)

var grammars = map[string]func() *sitter.Language{
	"typescript": typescript.GetLanguage,
	"tsx":        tsx.GetLanguage,
	"javascript": javascript.GetLanguage,
	"go":         golang.GetLanguage,
	"python":     python.GetLanguage,
}

// Languages returns the languages with a grammar, sorted.
func Languages() []string {
	langs := make([]string, 0, len(grammars))
	for lang := range grammars {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supports reports whether lang has a grammar.
func Supports(lang string) bool {
	_, ok := grammars[lang]
	return ok
}

// Options control which nodes end up in the tree.
type Options struct {
	// NamedOnly drops anonymous nodes such as punctuation and keywords.
	NamedOnly bool
	// IncludeText adds the source text of leaf nodes.
	IncludeText bool
}

// DefaultOptions keeps named nodes and their leaf text.
func DefaultOptions() Options {
	return Options{NamedOnly: true, IncludeText: true}
}

// Counter hands out node ids. Ids start at 1.
type Counter struct {
	last int
}

// Next returns the next id.
func (c *Counter) Next() int {
	c.last++
	return c.last
}

// Extractor parses source with one tree-sitter parser per language. It is not
// safe for concurrent use; give each goroutine its own.
type Extractor struct {
	opts    Options
	parsers map[string]*sitter.Parser
	logger  *zap.Logger
}

// NewExtractor creates an Extractor. Parsers are created on first use.
func NewExtractor(opts Options, logger *zap.Logger) *Extractor {
	return &Extractor{
		opts:    opts,
		parsers: make(map[string]*sitter.Parser),
		logger:  logging.OrNop(logger),
	}
}

// Close releases the parsers.
func (e *Extractor) Close() {
	for lang, p := range e.parsers {
		p.Close()
		delete(e.parsers, lang)
	}
}

// Extract parses src as lang and returns its syntax tree. Every node gets a
// fresh id from a new Counter.
func (e *Extractor) Extract(ctx context.Context, lang string, src []byte) (models.JSONValue, error) {
	p, err := e.parser(lang)
	if err != nil {
		return nil, err
	}

	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, apperrors.NewSyntaxError(fmt.Sprintf("failed to parse %s source", lang), err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		e.logger.Debug("source contains syntax errors", zap.String("language", lang))
	}

	counter := &Counter{}
	node := Convert(root, src, e.opts, counter)
	e.logger.Debug("extracted syntax tree",
		zap.String("language", lang),
		zap.Int("bytes", len(src)),
		zap.Int("nodes", counter.last))
	return node, nil
}

func (e *Extractor) parser(lang string) (*sitter.Parser, error) {
	if p, ok := e.parsers[lang]; ok {
		return p, nil
	}
	grammar, ok := grammars[lang]
	if !ok {
		return nil, apperrors.NewSyntaxError(fmt.Sprintf("no syntax tree support for '%s'", lang), apperrors.ErrUnsupportedLanguage)
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar())
	e.parsers[lang] = p
	return p, nil
}
