// Package toolexec registers and executes the tools an agent may call.
//
// A Tool has a name, a description and a JSON Schema for its parameters, which
// is exactly what a function-calling model needs to be offered the tool. The
// Registry holds tools by name; the Executor runs calls with a per-call
// timeout, panic recovery and an optional middleware chain.
//
//	registry := toolexec.NewRegistry()
//	registry.Register(mySearchTool)
//
//	executor := toolexec.NewExecutor(registry,
//	    toolexec.WithTimeout(30*time.Second),
//	    toolexec.WithMaxConcurrent(4),
//	)
//
//	output, err := executor.Execute(ctx, "wikipedia_search",
//	    toolexec.ParseInput(`{"query": "Alan Turing"}`))
//
// Calls requested together by the model can be run with ExecuteMany, which
// preserves the order of the calls in its results.
package toolexec
