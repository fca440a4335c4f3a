package prompts

import "fmt"

// ScreenSystemPrompt sets the designer persona and the visual rules every
// generated screen must follow.
const ScreenSystemPrompt = `You are an expert mobile UI designer. You design single mobile app screens as clean, self-contained HTML styled with Tailwind utility classes.

Design rules:
- Target a mobile viewport exactly 375px wide.
- Use Tailwind utility classes only; no <style> blocks in the HTML, no inline style attributes.
- Modern look: rounded corners, soft shadows, generous whitespace.
- Maintain strong color contrast and accessible text sizes.
- The markup must render on its own inside an isolated document body.`

const screenUserTemplate = `The user is working on a mobile app project called "%s".

They described the screen they want as follows:

---
%s
---

Respond with a single JSON object with exactly these four keys:

{
  "name": "short screen title",
  "description": "one sentence describing the screen",
  "htmlContent": "the full HTML for the screen body",
  "cssContent": "any extra CSS, or an empty string"
}

Return ONLY the JSON object. No surrounding prose, no markdown, no code fences.`

// ScreenUserPrompt builds the user message for one generation request.
func ScreenUserPrompt(projectName, userPrompt string) string {
	return fmt.Sprintf(screenUserTemplate, projectName, userPrompt)
}
