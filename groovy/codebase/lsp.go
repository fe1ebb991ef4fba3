package codebase

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/gravel/groovy"
	"github.com/dhamidi/gravel/groovy/parser"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "gravel"

type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
	rootDir  string
	options  []Option
}

// NewLSPServer creates a language server. The codebase is created on
// initialize, rooted at the client's workspace unless rootDir is set.
func NewLSPServer(version string, rootDir string, opts ...Option) *LSPServer {
	ls := &LSPServer{
		version: version,
		rootDir: rootDir,
		options: opts,
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentCompletion:     ls.textDocumentCompletion,
		TextDocumentDefinition:     ls.textDocumentDefinition,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentHover:          ls.textDocumentHover,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

// Codebase returns the served codebase, nil before initialize.
func (ls *LSPServer) Codebase() *Codebase {
	return ls.codebase
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := ls.rootDir
	if rootDir == "" {
		rootDir = "."
		if params.RootPath != nil && *params.RootPath != "" {
			rootDir = *params.RootPath
		} else if params.RootURI != nil && *params.RootURI != "" {
			if path, err := uriToPath(*params.RootURI); err == nil {
				rootDir = path
			}
		}
	}

	ls.codebase = New(rootDir, ls.options...)
	log.Infof("initialize %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(); err != nil {
		log.Errorf("%s", err)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.update(ctx, params.TextDocument.URI, path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.update(ctx, params.TextDocument.URI, path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.update(ctx, params.TextDocument.URI, path, []byte(*params.Text))
		return nil
	}
	if err := ls.codebase.ScanFile(path); err != nil {
		log.Warningf("%s", err)
		return nil
	}
	ls.publishDiagnostics(ctx, params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, path string, content []byte) {
	if err := ls.codebase.UpdateFile(path, content); err != nil {
		log.Warningf("%s", err)
		return
	}
	ls.publishDiagnostics(ctx, uri, path)
}

func (ls *LSPServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, path string) {
	severity := protocol.DiagnosticSeverityError
	source := lsName
	diagnostics := []protocol.Diagnostic{}
	for _, d := range ls.codebase.Diagnostics(path) {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    toRange(d.Span),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	line, column := fromPosition(params.Position)

	completions := ls.codebase.CompletionsAtPoint(path, line, column)
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		detail := c.Detail
		insertText := c.InsertText
		format := protocol.InsertTextFormatSnippet

		items = append(items, protocol.CompletionItem{
			Label:            c.Label,
			Kind:             &kind,
			Detail:           &detail,
			InsertText:       &insertText,
			InsertTextFormat: &format,
		})
	}

	return items, nil
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	line, column := fromPosition(params.Position)

	loc := ls.codebase.Definition(path, line, column)
	if loc == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   pathToURI(loc.Path),
		Range: toRange(loc.Span),
	}, nil
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	line, column := fromPosition(params.Position)

	text := ls.codebase.Hover(path, line, column)
	if text == "" {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: text,
		},
	}, nil
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	symbols := ls.codebase.Symbols(path)
	if len(symbols) == 0 {
		return nil, nil
	}
	result := make([]protocol.DocumentSymbol, len(symbols))
	for i, s := range symbols {
		result[i] = toDocumentSymbol(s)
	}
	return result, nil
}

func toDocumentSymbol(s Symbol) protocol.DocumentSymbol {
	detail := s.Detail
	ds := protocol.DocumentSymbol{
		Name:           s.Name,
		Detail:         &detail,
		Kind:           toSymbolKind(s),
		Range:          toRange(s.Span),
		SelectionRange: toRange(s.Selection),
	}
	for _, child := range s.Children {
		ds.Children = append(ds.Children, toDocumentSymbol(child))
	}
	return ds
}

func toSymbolKind(s Symbol) protocol.SymbolKind {
	switch s.Kind {
	case groovy.DeclType:
		switch s.TypeKind {
		case groovy.TypeKindInterface, groovy.TypeKindTrait, groovy.TypeKindAnnotation:
			return protocol.SymbolKindInterface
		case groovy.TypeKindEnum:
			return protocol.SymbolKindEnum
		}
		return protocol.SymbolKindClass
	case groovy.DeclMethod:
		return protocol.SymbolKindMethod
	case groovy.DeclConstructor:
		return protocol.SymbolKindConstructor
	case groovy.DeclField:
		return protocol.SymbolKindField
	}
	return protocol.SymbolKindVariable
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindMethod:
		return protocol.CompletionItemKindMethod
	case CompletionKindField:
		return protocol.CompletionItemKindField
	case CompletionKindClass:
		return protocol.CompletionItemKindClass
	case CompletionKindVariable:
		return protocol.CompletionItemKindVariable
	case CompletionKindTypeParameter:
		return protocol.CompletionItemKindTypeParameter
	case CompletionKindModule:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindText
	}
}

// fromPosition converts a 0-based protocol position to the 1-based line
// and column the parser uses.
func fromPosition(pos protocol.Position) (int, int) {
	return int(pos.Line) + 1, int(pos.Character) + 1
}

func toPosition(pos parser.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(max(pos.Line-1, 0)),
		Character: protocol.UInteger(max(pos.Column-1, 0)),
	}
}

func toRange(span parser.Span) protocol.Range {
	return protocol.Range{Start: toPosition(span.Start), End: toPosition(span.End)}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
