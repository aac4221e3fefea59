// Package files provides the file-level plumbing shared by every stage.
//
// Text: OpenText opens a delimited text source for sequential reading. In auto
// mode the whole file is checked for UTF-8 validity first; a file that is not
// valid UTF-8 is closed and reopened through an ISO-8859-1 decoder, with a single
// warning. A leading UTF-8 byte order mark is dropped.
//
// Discovery: FindInput returns the first existing path among candidates, so a
// stage can accept either the JSON or CSV flavour of a reference table.
//
// Atomic output: CreateAtomic writes into a temporary file next to the target and
// renames it into place on Commit, so a failed stage never leaves a truncated table.
//
// Example usage:
//
//	tf, err := files.OpenText(path, config.EncodingAuto, logger)
//	if err != nil {
//	    return err
//	}
//	defer tf.Close()
//
//	out, err := files.CreateAtomic(outPath)
//	if err != nil {
//	    return err
//	}
//	defer out.Close()
//	// ... write rows ...
//	return out.Commit()
package files
