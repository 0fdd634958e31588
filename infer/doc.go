// Package infer runs pretrained ONNX models through onnxruntime: a text
// sequence classifier fed by a Hugging Face tokenizer.json, and square-input
// image classifiers used for face attribute prediction.
package infer
