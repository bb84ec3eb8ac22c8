// Package prompttune generates indexing prompts adapted to a user's own
// corpus. It samples chunks from the input documents, asks a chat model to
// characterize the corpus (domain, persona, language, entity types, worked
// extraction examples), and assembles three ready-to-use prompt files:
// entity extraction, entity summarization, and community report generation.
//
//	tuner, err := prompttune.NewTuner(prompttune.Options{Model: model})
//	docs, err := tuner.LoadChunks(ctx, "./input", "*.txt")
//	prompts, err := tuner.GeneratePrompts(ctx, docs)
//	err = prompttune.WritePrompts("./prompts", prompts)
package prompttune
