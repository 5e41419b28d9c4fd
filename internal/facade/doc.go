// Package facade is the session layer of the layout tools.
//
// A Facade serves one book for one caller. It turns caller requests (segment
// a page, export a result, merge outlines, import settings) into calls on the
// result cache, the parameter resolver, the segmentation engine, the XML
// codec and the merge engine.
//
// # Lifecycle
//
// A Facade starts uninitialized. Init binds it to a book and a resource
// directory; Clear returns it to the uninitialized state and drops the
// engine, the current parameters and any prepared exports. Every operation
// except DefaultSettings returns ErrNotInitialized while uninitialized.
//
// # Engine Reuse
//
// The segmentation engine is created through the configured
// layout.EngineFactory the first time a page is segmented. Later pages only
// update its parameters. Parameters carry over from page to page: region
// rules and manual point lists persist, geometry is recomputed per image.
//
// # Page Buffers
//
// Operations that need pixels (segmentation, merge, settings import,
// previews) decode the page image on entry and release it before they
// return, whether they succeed or fail.
//
// # Thread Safety
//
// A Facade has no internal locking. At most one operation may run at a time;
// callers sharing a Facade must serialize access. Separate Facades share no
// state.
package facade
