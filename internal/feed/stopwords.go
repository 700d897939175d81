package feed

// stopWords is the small English stop-word set removed from keyword lists.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "has": {}, "had": {}, "have": {},
	"was": {}, "were": {}, "with": {}, "this": {}, "that": {}, "from": {},
	"they": {}, "will": {}, "would": {}, "there": {}, "their": {},
	"what": {}, "about": {}, "which": {}, "when": {}, "your": {},
	"into": {}, "more": {}, "some": {}, "them": {}, "then": {},
	"than": {}, "its": {}, "also": {}, "been": {}, "how": {},
}
