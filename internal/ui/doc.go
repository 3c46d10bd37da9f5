// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The dashboard has three views:
//  1. [DashboardView] : Metrics summary and saved jobs ranked by match score
//  2. [DetailView] : Per-factor breakdown of the selected job's score
//  3. [ConfirmView] : Confirm removing the selected job
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Metrics changes published on the state container's event bus flow through a channel into the model, so the
// summary stays current while commands write to the store.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, x, y/n, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
