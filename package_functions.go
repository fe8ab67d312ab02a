package fetch

// Package-level constructors for starting a transformation chain.

// New returns the zero Request: a GET with no URL.
func New() Request {
	return Request{}
}

// URL returns a Request for the given URL.
func URL(url string) Request {
	return Request{}.URL(url)
}

// Get returns a GET Request for the given URL.
func Get(url string) Request {
	return URL(url).GET()
}

// Post returns a POST Request for the given URL.
func Post(url string) Request {
	return URL(url).POST()
}

// Put returns a PUT Request for the given URL.
func Put(url string) Request {
	return URL(url).PUT()
}

// Patch returns a PATCH Request for the given URL.
func Patch(url string) Request {
	return URL(url).PATCH()
}

// Delete returns a DELETE Request for the given URL.
func Delete(url string) Request {
	return URL(url).DELETE()
}
