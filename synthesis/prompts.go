package synthesis

import (
	"fmt"
	"strings"
)

func stuffPrompt(question, content string) string {
	return fmt.Sprintf(`Use the following context to answer the question. If the context does not contain the answer, say so.

Context:
%s

Question: %s

Answer:`, content, question)
}

func mapPrompt(question, content string) string {
	return fmt.Sprintf(`Use the following context to answer the question as well as you can. Answer based only on this context.

Context:
%s

Question: %s

Answer:`, content, question)
}

func reducePrompt(question string, subs []SubAnswer) string {
	var b strings.Builder
	b.WriteString("Below are partial answers to the same question, each derived from a different part of the source material. Combine them into one final answer. Resolve contradictions in favor of the more specific partial answer.\n\n")
	for i, s := range subs {
		fmt.Fprintf(&b, "Partial answer %d:\n%s\n\n", i+1, s.Text)
	}
	fmt.Fprintf(&b, "Question: %s\n\nFinal answer:", question)
	return b.String()
}

func refineInitialPrompt(question, content string) string {
	return fmt.Sprintf(`Use the following context to answer the question.

Context:
%s

Question: %s

Answer:`, content, question)
}

func refinePrompt(question, prior, content string) string {
	return fmt.Sprintf(`You previously produced this answer:
%s

Here is additional context. Refine the answer if the new context adds or corrects anything; otherwise return the answer unchanged.

Context:
%s

Question: %s

Refined answer:`, prior, content, question)
}

func rerankPrompt(question, content string) string {
	return fmt.Sprintf(`Use the following context to answer the question, then rate how well the context supports your answer.

Context:
%s

Question: %s

Respond in exactly this format:
Answer: <your answer>
Score: <0-100, how confident you are that the context answers the question>`, content, question)
}
