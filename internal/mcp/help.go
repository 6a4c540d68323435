package mcp

const helpText = `# MCP Scout

Discover Model Context Protocol servers for a task.

## Tools

### search_mcps
Find MCP servers that fulfil a requirement.

- requirement (required): what the server should do
- max_results: maximum recommendations, default 10
- include_github_only: restrict to GitHub and the MCP documentation sites
- broad: keep results that never mention MCP, at lower confidence
- filter_keywords: keep only recommendations matching these keywords
- rerank: order filter_keywords matches by keyword relevance blended with confidence

Example: {"requirement": "query a PostgreSQL database", "max_results": 5}

### get_mcp_details
Describe one MCP server, with installation information and similar servers.

Example: {"mcp_url": "https://github.com/modelcontextprotocol/servers"}

### find_similar_mcps
Find servers similar to a reference server.

Example: {"reference_mcp_url": "https://github.com/org/sqlite-mcp", "max_results": 5}

### ask_mcp_question
Answer a question about MCP servers, with sources.

Example: {"question": "Which MCP servers can read Google Drive?"}

### categorize_mcps
Search for a requirement and group the results by category.

Example: {"requirement": "team collaboration"}

## Confidence

Each recommendation carries a confidence_score between 0 and 1. It combines
the search relevance, how clearly the page describes an MCP server, and
credibility signals such as a code host repository, documentation and stars.
`
