package openai

import (
	"fmt"

	"github.com/poiesic/aquakb/ai"
	"github.com/poiesic/aquakb/core"
)

const analysisPromptTemplate = `You are an expert analyzing source code and documentation for a technical
knowledge base. Given one item, produce an analysis that discriminates it from
every similar item in the corpus.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- "purpose" is one or two sentences naming the exact capability this item provides, mentioning the specific types, functions, or packages involved. Never a generic description.
- "questions" are 5-10 technical questions so specific that ONLY someone who has studied THIS EXACT item could answer them. Reference concrete names, parameters, and values from the item.
- "key_concepts" are the 3-10 concepts most essential for understanding the item, lowercase, 1-3 words each.
- "packages" lists the modules or packages the item exercises; use [] when none apply.
- Include only what is explicitly present in the item. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const itemPromptTemplate = `ITEM KIND: %s
PATH: %s
TITLE: %s

CONTENT:
%s`

// maxContentChars bounds how much item content is sent to the model.
// Large modules blow past context windows and degrade answer quality.
const maxContentChars = 24000

func buildSystemPrompt() string {
	return fmt.Sprintf(analysisPromptTemplate, ai.AnalysisSchema)
}

func buildItemPrompt(item *core.Item) string {
	contents := item.Contents
	if len(contents) > maxContentChars {
		contents = contents[:maxContentChars]
	}
	return fmt.Sprintf(itemPromptTemplate, item.Source, item.Path, item.Title, contents)
}
