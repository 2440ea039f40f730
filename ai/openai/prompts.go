package openai

// refinementPrompt is the fixed system instruction for query refinement.
// The user query is the only variable input.
const refinementPrompt = `Refine the user's query for searching a catalog of student gigs and make its constraints explicit:
- If exclusions are mentioned, phrase each one as "not X" (for example "not tutoring").
- Keep numeric price constraints in the query, phrased like "less than $30", "over $30" or "around $30".
- If the query is too vague to search, reply with a short request for more details instead.
Reply with the refined query text only, no explanations.`
