// Package main hosts the reel CLI: one-shot commands for managing MediaCMS
// connections and listing, searching and playing media, plus `reel browse`
// which starts the terminal browser.
//
// Every command resolves configuration, logging and the persistent store
// through commandContext, so subcommands only deal with presentation.
package main
