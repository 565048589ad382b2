package ui

import "iecsize/internal/progress"

type jobUpdateMsg struct {
	U progress.Update
}

type jobResultMsg struct {
	R progress.Result
}

// scanDoneMsg carries the authoritative results once every walk returned.
type scanDoneMsg struct {
	Results []progress.Result
	Err     error
}

type allDoneMsg struct{}
