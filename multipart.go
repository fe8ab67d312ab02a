package fetch

import (
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/ansel1/merry"
)

// The boundary is fixed so that EffectiveContentType stays a pure
// function of the request state.  The value just needs to be unlikely
// to occur in part content.
const multipartBoundary = "FetchFormBoundary15TFVmnEAzMpqUWy"

// ContentTypeMultipart is the content type resolved for requests
// carrying binary attachments.
const ContentTypeMultipart = "multipart/form-data; boundary=" + multipartBoundary

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, `\"`)

// writeMultipart frames params as a multipart/form-data body, delimited
// with the fixed boundary.  Scalar values become one form part, list
// values one part per element, and attachments a file part carrying the
// declared content type and filename.  Part order follows parameter
// insertion order.
func writeMultipart(w io.Writer, params []Param) error {
	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(multipartBoundary); err != nil {
		return merry.Wrap(err)
	}

	for _, p := range params {
		var err error
		switch v := p.Value.(type) {
		case stringValue:
			err = mw.WriteField(p.Name, string(v))
		case listValue:
			for _, item := range v {
				if err = mw.WriteField(p.Name, item); err != nil {
					break
				}
			}
		case *Attachment:
			err = writeAttachment(mw, p.Name, v)
		}
		if err != nil {
			return merry.Prepend(err, "writing part "+p.Name)
		}
	}

	return merry.Wrap(mw.Close())
}

func writeAttachment(mw *multipart.Writer, name string, a *Attachment) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		`form-data; name="`+quoteEscaper.Replace(name)+`"; filename="`+quoteEscaper.Replace(a.Filename)+`"`)

	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, a.Reader)
	return err
}
