// Package personality provides the read-only, enumerable collection of
// personality templates that seed conversations, plus the two fixed prompt
// templates of the plugin pipeline (detect and synthesize stages).
//
// A personality is a named text blob; its content becomes the conversation's
// system turn verbatim. Templates are configuration, not state: sources never
// mutate them.
package personality
