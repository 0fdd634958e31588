// Command biaslab runs the bias study pipelines: sample collection, bias
// classification, chart reporting and demographic analysis.
package main
