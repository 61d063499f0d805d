//go:build darwin

package capture

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Foundation
#import <CoreGraphics/CoreGraphics.h>
#import <Foundation/Foundation.h>

static bool hasScreenPermission(void) {
	if (@available(macOS 11.0, *)) {
		return CGPreflightScreenCaptureAccess();
	}
	return true;
}

static void requestScreenPermission(void) {
	if (@available(macOS 11.0, *)) {
		CGRequestScreenCaptureAccess();
	}
}
*/
import "C"

// HasScreenPermission checks screen recording permission.
func HasScreenPermission() bool {
	return bool(C.hasScreenPermission())
}

// RequestScreenPermission prompts the system permission dialog.
func RequestScreenPermission() {
	C.requestScreenPermission()
}
