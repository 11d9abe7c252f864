package cli

import (
	stderrors "errors"
	"io"

	"github.com/txwater/studymap/pkg/errors"
)

// headlines maps each error code to the first line printed for it.
var headlines = map[errors.Code]string{
	errors.ErrCodeInputNotFound:       "One or more input files not found.",
	errors.ErrCodeInvalidInput:        "Could not read an input dataset.",
	errors.ErrCodeInvalidScene:        "Invalid scene.",
	errors.ErrCodeReprojection:        "Could not reproject data to longitude/latitude.",
	errors.ErrCodeUnsupportedGeometry: "Unsupported geometry.",
	errors.ErrCodeNetwork:             "Could not fetch basemap imagery.",
	errors.ErrCodeRender:              "Rendering failed.",
	errors.ErrCodeWrite:               "Could not write the output image.",
}

// Report prints err to w with a headline chosen by its error code. A
// missing-input error lists every expected path.
func Report(w io.Writer, err error) {
	code := errors.GetCode(err)
	headline, ok := headlines[code]
	if !ok {
		headline = "An unexpected error occurred."
	}
	printError(w, "%s", headline)

	if paths := errors.MissingPaths(err); len(paths) > 0 {
		io.WriteString(w, "  "+StyleDim.Render("Please ensure your files are located at:")+"\n")
		for _, p := range paths {
			io.WriteString(w, "  "+StyleDim.Render(iconArrow)+" "+p+"\n")
		}
		return
	}
	io.WriteString(w, "  "+StyleDim.Render(detail(err))+"\n")
}

// detail returns the error text without the code prefix.
func detail(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}
