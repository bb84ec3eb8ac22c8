// Package query implements the two search engines that answer questions
// over an indexed knowledge graph.
//
// GlobalSearch answers holistic questions about the whole corpus. It batches
// the community reports into token-bounded context windows, asks the model
// for rated key points over every batch in parallel, then reduces the
// surviving points into one final answer.
//
// LocalSearch answers questions about specific entities. It maps the query
// to entities through their description embeddings, gathers the communities,
// relationships, claims and source texts around them into a single mixed
// context, and asks the model once.
//
// Both engines return a SearchResult carrying the response, the context that
// produced it and basic call accounting.
package query
