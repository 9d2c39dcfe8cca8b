package mcpserver

// GuideFormatContract describes the section layout of every generated
// developer guide, for LLM consumers reading guides through MCP.
const GuideFormatContract = `# Developer Guide Format

Every guide produced by an analysis run is a single Markdown document
with the following sections, in order:

1. **Executive Summary** – what the project does and who it is for.
2. **Project Architecture** – high-level structure and how the major
   pieces fit together.
3. **Setup & Installation** – prerequisites and the steps to get a
   working environment.
4. **Code Organization** – directory layout and where different kinds
   of code live.
5. **Core Concepts** – domain terms and abstractions a newcomer must
   understand.
6. **Development Workflow** – how changes are made, tested, and shipped.
7. **API Reference** – the important public entry points.
8. **Common Tasks** – step-by-step recipes for frequent changes.

Guides are generated from the recorded per-file and per-directory
summaries of a run. Use the get_summary tool to drill into the raw
findings behind any guide statement.
`
