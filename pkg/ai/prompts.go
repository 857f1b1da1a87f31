package ai

const DocumentTitlePrompt = `
# Task Context
You are a helpful assistant that names documents for a knowledge catalog. You will be provided with text fragments from the first pages of a document.

# Background Data
%s

# Detailed Task Description & Rules
- Derive a short, descriptive title for the whole document.
- Prefer wording taken from the fragments over invented wording.
- Do not include file extensions, page numbers, or quotation marks.
- The title must be at most 12 words.

# Immediate Task Description or Request
Return only the title as plain text, nothing else.
`

const SubtopicNamePrompt = `
# Task Context
You are a helpful assistant that names sections of a document. You will be provided with the beginning of one section's text.

# Background Data
%s

# Detailed Task Description & Rules
- Derive a concise, specific name that describes what this section is about.
- The name must have between 2 and 10 words.
- Do not use generic names such as "Introduction", "Section", or "Content" unless the text is truly generic.
- Do not wrap the name in quotation marks.

# Immediate Task Description or Request
Return only the section name as plain text, nothing else.
`

const BulletPointsPrompt = `
# Task Context
You are a helpful assistant that summarizes document sections into short bullet points.

# Background Data
%s

# Detailed Task Description & Rules
- Extract the 3 to 6 most important statements of the text.
- Each bullet point must be one short, self-contained sentence.
- Keep the original language of the text.
- Do not invent facts that are not present in the text.

# Output Formatting
Return a JSON object with this structure:
{
  "bullet_points": ["<point 1>", "<point 2>", "<point 3>"]
}
`

const RelevancePrompt = `
# Task Context
You are a helpful assistant that rates how relevant a document section is to its parent topic.

# Background Data
- Topic: "%s"
- Section text: "%s"

# Detailed Task Description & Rules
- Rate the relevance of the section to the topic on a scale from 0.0 (unrelated) to 1.0 (central to the topic).
- Judge content only, not writing quality.

# Output Formatting
Return a JSON object with this structure:
{
  "score": <number between 0.0 and 1.0>
}
`

const IntentPrompt = `
# Task Context
You are a router that decides whether a user question needs a lookup in a knowledge graph of document topics and subtopics, or whether it is casual conversation.

# Background Data
User question: "%s"

# Detailed Task Description & Rules
- The graph contains topics, subtopics, their summaries and their ordering.
- Questions about documents, topics, subtopics, summaries, structure, or contents require a graph query.
- Greetings, small talk, and questions about the assistant itself do not.

# Output Formatting
Return a JSON object with this structure:
{
  "requires_graph_query": <true|false>,
  "reasoning": "<one short sentence explaining the decision>"
}
`

const QueryGenPrompt = `
# Task Context
You are an expert SQL author. You translate a natural-language question into a single PostgreSQL query over a knowledge-graph catalog.

# Background Data
Schema of the graph catalog:
%s

User question: "%s"

# Detailed Task Description & Rules
- Use only tables and columns that appear in the schema above.
- Table and relationship names are case sensitive and must be double-quoted, e.g. kg."Topic".
- Relationship tables connect their endpoint tables via the listed foreign keys and carry a position column for sibling ordering.
- Return rows that answer the question directly; prefer names and summaries over raw ids.
- The query must be read-only: a single SELECT statement, no writes, no DDL.

# Output Formatting
Return a JSON object with this structure:
{
  "query": "<the SQL query as one string>"
}
`

const AnalyzePrompt = `
# Task Context
You are a helpful assistant that answers a user's question from knowledge-graph query results.

# Background Data
- User question: "%s"
- Executed query: "%s"
- Query results:
%s

# Detailed Task Description & Rules
- Answer the question using only the query results above.
- If the results do not contain the answer, say so plainly.
- Answer in the language of the question.
- Be concise; use short paragraphs or bullet points where helpful.
`

const CasualPrompt = `
# Task Context
You are a friendly assistant for a document knowledge-graph system. The user's message is casual conversation, not a data question.

# Detailed Task Description & Rules
- Respond naturally and briefly.
- If the user seems to be looking for document contents, invite them to ask about their documents' topics and subtopics.
`
