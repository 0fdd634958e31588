// Package bias holds the political bias labelling pipeline: the closed label
// set and its normalization rule, CSV table handling, per-row classification
// through a pretrained model, and the aggregate counts the reporter draws.
package bias
