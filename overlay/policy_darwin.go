//go:build darwin

package overlay

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa
#import <Cocoa/Cocoa.h>

static void ghostpane_setSharingNone(void *handle) {
	NSWindow *w = (__bridge NSWindow *)handle;
	dispatch_async(dispatch_get_main_queue(), ^{
		[w setSharingType:NSWindowSharingNone];
	});
}

static void ghostpane_setLevel(void *handle, int level) {
	NSWindow *w = (__bridge NSWindow *)handle;
	dispatch_async(dispatch_get_main_queue(), ^{
		[w setLevel:level];
		// Keep the overlay present on every space, including full-screen
		// apps, so it survives space switches during a call.
		[w setCollectionBehavior:NSWindowCollectionBehaviorCanJoinAllSpaces |
		                         NSWindowCollectionBehaviorFullScreenAuxiliary];
	});
}

static void ghostpane_setAlpha(void *handle, double alpha) {
	NSWindow *w = (__bridge NSWindow *)handle;
	dispatch_async(dispatch_get_main_queue(), ^{
		[w setAlphaValue:alpha];
	});
}

static void ghostpane_hideFromSwitcher(void *handle) {
	dispatch_async(dispatch_get_main_queue(), ^{
		[NSApp setActivationPolicy:NSApplicationActivationPolicyAccessory];
	});
}

static int ghostpane_normalLevel(void)      { return NSNormalWindowLevel; }
static int ghostpane_floatingLevel(void)    { return NSFloatingWindowLevel; }
static int ghostpane_screenSaverLevel(void) { return NSScreenSaverWindowLevel; }
*/
import "C"
import "unsafe"

type darwinPolicy struct{}

func newPolicy() Policy { return darwinPolicy{} }

// defaultLevel keeps "floating" on macOS: it stays above normal windows
// without stealing focus from full-screen call apps.
func defaultLevel() Level { return LevelFloating }

func (darwinPolicy) ApplyCaptureExclusion(handle uintptr) error {
	C.ghostpane_setSharingNone(unsafe.Pointer(handle))
	return nil
}

func (darwinPolicy) ApplyLevel(handle uintptr, level Level) error {
	var native C.int
	switch level {
	case LevelFloating:
		native = C.ghostpane_floatingLevel()
	case LevelScreenSaver:
		native = C.ghostpane_screenSaverLevel()
	default:
		native = C.ghostpane_normalLevel()
	}
	C.ghostpane_setLevel(unsafe.Pointer(handle), native)
	return nil
}

func (darwinPolicy) ApplyOpacity(handle uintptr, opacity float64) error {
	C.ghostpane_setAlpha(unsafe.Pointer(handle), C.double(opacity))
	return nil
}

func (darwinPolicy) HideFromTaskSwitcher(handle uintptr) error {
	C.ghostpane_hideFromSwitcher(unsafe.Pointer(handle))
	return nil
}
