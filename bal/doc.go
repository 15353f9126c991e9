// Package bal implements the BAL language core: the program model, a
// tokenizer and recursive-descent parser, trigger decoding, and the writer
// that turns programs back into source text.
//
// # Language Overview
//
// A BAL program is a sequence of entity blocks, optionally followed by one
// composition block describing control flow:
//
//	researcher{"goal":"Research the topic","model":"openai:gpt-4o","tools":{"web_search"}}
//	writer{"goal":"Write the report","output":{"report":"string"}}
//	chain{researcher writer}
//
// Entity properties are quoted keys with string, number, string-set, or
// string-map values. The recognized properties are goal, model, tools,
// output, temperature, reasoning, retries, stopWhen, canRequest, history,
// and trigger; unrecognized properties are ignored so newer sources still
// load.
//
// # Compositions
//
// Four composition forms exist:
//
//	chain{a b c}                 sequential, output piped forward
//	parallel{fast:a deep:b}      concurrent branches, optionally labeled
//	when{cond pass fail}         branch on a condition entity's result
//	loop{body until:"done" max:5}
//
// All four parse into a structured CompositionExpr tree on the Program;
// nothing downstream inspects raw source text for control flow.
//
// # Triggers
//
// An entity's trigger is either a structured map or a compact string such
// as "schedule:0 9 * * *", "webhook", or "bb_completion:watcher:success".
// Unrecognized trigger strings decode as manual; triggers are authored by
// hand and a typo should degrade, not fail the parse.
//
// # Parsing and writing
//
//	prog, err := bal.ParseText(src)
//	if err != nil {
//	    var serr *bal.SyntaxError
//	    errors.As(err, &serr) // line/column available
//	}
//	out := bal.Write(prog)
//
// Programs are immutable once parsed. ApplyNodeEdit and
// Program.WithEntity produce edited copies rather than mutating in place,
// so a Program held by concurrent readers stays stable.
package bal
