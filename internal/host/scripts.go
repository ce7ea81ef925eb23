package host

import (
	_ "embed"
)

// Embedded Playwright scripts executed inside chat sessions via Kernel's
// Playwright execution API. The coordinator treats them as opaque.

//go:embed scripts/check_ready.js
var CheckReadyScript string

//go:embed scripts/focus_composer.js
var FocusComposerScript string

//go:embed scripts/send_message.js
var SendMessageScript string

//go:embed scripts/page_boot.js
var PageBootScript string
