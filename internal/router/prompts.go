package router

const routerPromptTemplate = `You are a query router that determines how to best handle user questions.
Analyze the query and determine if it requires:

1. Retrieval from documents (RETRIEVAL)
2. Direct response without context (DIRECT)
3. Mathematical calculations (CALCULATION)
4. Current information from the web (WEB_SEARCH)
5. Clarification from user (CLARIFICATION)

Query: %s

Respond with a single line of JSON:
{
    "query_type": "RETRIEVAL|DIRECT|CALCULATION|WEB_SEARCH|CLARIFICATION",
    "confidence": <float between 0 and 1>,
    "should_retrieve": <boolean>,
    "retrieval_query": "<optional: reformulated query for retrieval>",
    "reasoning": "<explanation of decision>"
}
`
