package models

const (
	ContextSeparator = "\n\n"
	DefaultTopK      = 4
	// number of retrieved documents surfaced as answer sources
	MaxAnswerSources = 2
	// context excerpt length used when the LLM is unavailable
	ContextExcerptChars = 800
)

var (
	QAPromptTemplate = `You are KtuGPT, a helpful assistant specialized in Data Structures and Algorithms. Use the following context from DS&A materials to answer the user's question clearly and comprehensively.

Context from DS&A materials:
%s

Chat history:
%s

User Question: %s

Please provide a clear, educational explanation based on the context above. If the question is about comparing concepts (like stack vs queue), structure your answer with clear sections. Include examples and use cases where relevant.

Answer:`

	OffTopicResponse = "I'm KtuGPT, a specialized assistant for Data Structures and Algorithms questions. I can help you with topics like:\n\n" +
		"• Data Structures: Arrays, Linked Lists, Stacks, Queues, Trees, Graphs, Hash Tables\n" +
		"• Algorithms: Sorting, Searching, Traversal, Dynamic Programming\n" +
		"• Complexity Analysis: Time and Space Complexity, Big O notation\n\n" +
		"Please ask me a question related to Data Structures and Algorithms, and I'll be happy to help!"

	NoContextResponse = "I couldn't find relevant information in the DS&A materials for your question. Could you please rephrase or ask about a specific data structure or algorithm topic?"

	ExcerptPrefix = "Based on the DS&A materials:\n\n"

	ApologyResponse = "I apologize, but I'm having trouble processing your question right now. Please try again."
)
