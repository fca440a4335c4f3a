package ai

import (
	"fmt"
	"html"

	"screen_ai_server/internal/types"
)

// promptEchoLimit bounds how much of the raw prompt is echoed into the
// fallback screen.
const promptEchoLimit = 100

const fallbackTemplate = `<div class="flex flex-col h-full min-h-[812px] w-[375px] bg-gray-50">
  <header class="px-5 py-4 bg-white border-b border-gray-200">
    <h1 class="text-lg font-semibold text-gray-900">New Screen</h1>
  </header>
  <main class="flex-1 px-5 py-6 space-y-4">
    <div class="bg-white rounded-2xl shadow-sm p-4">
      <p class="text-xs uppercase tracking-wide text-gray-400 mb-1">Your prompt</p>
      <p class="text-sm text-gray-600">%s</p>
    </div>
    <div class="bg-white rounded-2xl shadow-sm p-4 h-40 flex items-center justify-center">
      <p class="text-sm text-gray-400">Content coming soon</p>
    </div>
  </main>
  <footer class="px-5 py-4">
    <button class="w-full py-3 rounded-xl bg-blue-600 text-white text-sm font-medium shadow-sm">Continue</button>
  </footer>
</div>`

// Synthesize deterministically builds a minimal renderable screen from the
// raw prompt. It is pure, does no I/O and never fails; it is used both when
// the model call errors out and when nothing could be extracted from its
// output.
func Synthesize(prompt string) types.ScreenData {
	echo := prompt
	if r := []rune(echo); len(r) > promptEchoLimit {
		echo = string(r[:promptEchoLimit]) + "..."
	}
	echo = html.EscapeString(echo)

	return types.ScreenData{
		Name:        "New Screen",
		Description: "Placeholder screen generated from the prompt",
		HTMLContent: fmt.Sprintf(fallbackTemplate, echo),
		CSSContent:  "",
		IsFallback:  true,
	}
}
