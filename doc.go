// Package graphrag answers natural language questions over a GraphRAG
// knowledge index and tunes the indexing prompts to a new corpus.
//
// A GraphRAG index is the set of parquet tables an indexing run leaves
// behind: entities and relationships extracted from the source documents,
// the community hierarchy built over them, one report per community and
// the source text units everything was extracted from. This package reads
// those tables and exposes the two search modes of GraphRAG plus automatic
// prompt tuning.
//
// # Global search
//
// Global search answers questions about the dataset as a whole. It runs a
// map stage over batches of community reports in parallel, scores the key
// points each batch yields and reduces them into one final answer:
//
//	cfg, err := config.Load("settings.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	data, err := index.LoadIndexData("./output", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	opts := graphrag.DefaultSearchOptions()
//	opts.Query = "What are the major themes in this dataset?"
//	result, err := graphrag.GlobalSearch(ctx, cfg, data, opts)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Response)
//
// # Local search
//
// Local search answers questions about specific entities. It maps the
// query to entities through their description embeddings, gathers the
// communities, relationships, claims and source texts around them into one
// mixed context window and asks the model once:
//
//	opts := graphrag.DefaultSearchOptions()
//	opts.Query = "Who is Scrooge and what are his main relationships?"
//	result, err := graphrag.LocalSearch(ctx, cfg, data, opts)
//
// The entity embeddings live in the vector store named by the
// configuration. The in-memory store is loaded from the index on every
// call; persistent stores are reused unless marked for overwrite.
//
// # Prompt tuning
//
// PromptTune generates entity extraction, description summarization and
// community report prompts fitted to the corpus under the configured input
// directory, ready to drive the next indexing run:
//
//	prompts, err := graphrag.PromptTune(ctx, cfg, graphrag.TuneOptions{
//		Domain: "environmental news",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := prompttune.WritePrompts("./prompts", prompts); err != nil {
//		log.Fatal(err)
//	}
//
// Every knob above has a working default. An empty TuneOptions discovers
// the domain and language from the corpus itself.
package graphrag
