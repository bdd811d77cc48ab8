package wavsplit

import "context"

// SplitFile splits one file with a default Splitter reporting to
// onProgress, which may be nil. It returns the header and data bytes read.
// Cancel ctx to stop early; a canceled split returns the bytes counted so
// far and a nil error, and ctx.Err() tells the two apart.
func SplitFile(ctx context.Context, inputPath, outputDir string, onProgress ProgressFunc) (int64, error) {
	res, err := NewSplitter(WithProgress(onProgress)).SplitFile(ctx, inputPath, outputDir)

	return res.Bytes, err
}

// SplitBatch runs a Batch over paths, sending progress to onProgress and
// log lines to onLog. Both callbacks may be nil.
func SplitBatch(ctx context.Context, paths []string, outputDir string,
	onProgress ProgressFunc, onLog func(string),
) (int64, error) {
	res, err := NewBatch(WithProgress(onProgress), WithLogFunc(onLog)).Run(ctx, paths, outputDir)

	return res.Bytes, err
}
