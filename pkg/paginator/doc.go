// Package paginator renders long result sets as a sequence of pages inside a
// single chat message and lets the requesting user navigate them with
// interactive controls.
//
// Invariants:
// - A session exists only for results with more than one page.
// - 0 <= CurrentIndex < len(Pages) for every stored session.
// - Only the session owner can change the current page; other users' clicks are no-ops.
// - Expired sessions are deleted by the Reaper and their controls are detached.
//
// Usage:
//
//	engine := paginator.New(store, messenger, paginator.Options{BaseID: "pagina_paginator"})
//	p := engine.NewPaginator()
//	p.AddNamedPage(paginator.Embed("Users", "..."), "users")
//	p.AddPage(paginator.Embed("Groups", "..."))
//	_ = p.Send(ctx, target)
package paginator
