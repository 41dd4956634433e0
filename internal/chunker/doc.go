// Package chunker splits free-text documents into overlapping token windows.
//
// Text is tokenized with the cl100k_base subword encoding and sliced into
// windows of Size tokens, each window starting Size-Overlap tokens after the
// previous one so neighboring chunks share context across the boundary.
//
// If the tokenizer cannot be initialized (the encoding tables are fetched
// lazily and may be unavailable offline), chunking degrades to whitespace
// word windows with the same size and overlap semantics. The fallback never
// fails; worst case is coarser chunk boundaries.
package chunker
