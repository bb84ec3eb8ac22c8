// Package llm bundles the language-model plumbing shared by the search
// engines and the prompt tuner: chat completion helpers on top of
// langchaingo's llms.Model, embedding clients, and token counting.
package llm
