// Package tagxgen compiles .tgx templates into Go source code.
//
// The pipeline consists of:
//   - [Lexer]: dual-mode scanner (markup mode and code mode after the '@' transition)
//   - [Parser]: builds the [ChunkTree], collecting [DirectiveDescriptor]s and
//     resolving extension tags through a [Resolver]
//   - [CodeBuilder]: renders the chunk tree into Go code plus [LineMapping]s,
//     delegating extension tags to an [ExtensionRenderer]
//   - [Engine]: runs one compilation pass configured by a [Host]
//
// A pass never aborts on bad input. Lex, parse and resolution problems become
// [Diagnostic]s; only a broken internal invariant yields a [RenderError].
package tagxgen
