//go:build ios && cgo

package session

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -Wno-deprecated-declarations
#cgo LDFLAGS: -framework AVFoundation -framework Foundation
#include <stdlib.h>
#include <string.h>

#import <AVFoundation/AVFoundation.h>

typedef struct {
	char *domain;
	char *message;
	long code;
} avs_error;

typedef struct {
	double sampleRate;
	double preferredSampleRate;
	double ioBufferDuration;
	double preferredIOBufferDuration;
	double outputLatency;
	double inputLatency;
} avs_hardware;

static char *avs_strdup(NSString *s) {
	if (s == nil) {
		return NULL;
	}
	return strdup([s UTF8String]);
}

static void avs_fill_error(avs_error *out, NSError *err) {
	if (out == NULL) {
		return;
	}
	if (err == nil) {
		out->message = strdup("call failed without an NSError");
		return;
	}
	out->domain = avs_strdup(err.domain);
	out->message = avs_strdup(err.localizedDescription);
	out->code = (long)err.code;
}

// Indexes match the Category and Mode constants on the Go side.
static AVAudioSessionCategory avs_category(int idx) {
	switch (idx) {
	case 0: return AVAudioSessionCategoryAmbient;
	case 1: return AVAudioSessionCategorySoloAmbient;
	case 2: return AVAudioSessionCategoryPlayback;
	case 3: return AVAudioSessionCategoryRecord;
	case 4: return AVAudioSessionCategoryPlayAndRecord;
	case 5: return AVAudioSessionCategoryAudioProcessing;
	case 6: return AVAudioSessionCategoryMultiRoute;
	}
	return nil;
}

static AVAudioSessionMode avs_mode(int idx) {
	switch (idx) {
	case 0: return AVAudioSessionModeDefault;
	case 1: return AVAudioSessionModeVoiceChat;
	case 2: return AVAudioSessionModeGameChat;
	case 3: return AVAudioSessionModeVideoRecording;
	case 4: return AVAudioSessionModeMeasurement;
	case 5: return AVAudioSessionModeMoviePlayback;
	case 6: return AVAudioSessionModeVideoChat;
	case 7: return AVAudioSessionModeSpokenAudio;
	case 8: return AVAudioSessionModeVoicePrompt;
	}
	return nil;
}

static int avs_category_index(AVAudioSessionCategory c) {
	for (int i = 0; i < 7; i++) {
		if ([c isEqualToString:avs_category(i)]) {
			return i;
		}
	}
	return -1;
}

static int avs_mode_index(AVAudioSessionMode m) {
	for (int i = 0; i < 9; i++) {
		if ([m isEqualToString:avs_mode(i)]) {
			return i;
		}
	}
	return -1;
}

static int avs_set_category(int category, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok = [[AVAudioSession sharedInstance] setCategory:avs_category(category) error:&e];
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static int avs_set_category_options(int category, unsigned long options, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok = [[AVAudioSession sharedInstance] setCategory:avs_category(category)
		                                           withOptions:(AVAudioSessionCategoryOptions)options
		                                                 error:&e];
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static int avs_set_category_mode_options(int category, int mode, unsigned long options, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok = [[AVAudioSession sharedInstance] setCategory:avs_category(category)
		                                                  mode:avs_mode(mode)
		                                               options:(AVAudioSessionCategoryOptions)options
		                                                 error:&e];
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static int avs_set_mode(int mode, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok = [[AVAudioSession sharedInstance] setMode:avs_mode(mode) error:&e];
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static int avs_set_active(int active, unsigned long options, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok;
		if (options == 0) {
			ok = [[AVAudioSession sharedInstance] setActive:(active != 0) error:&e];
		} else {
			ok = [[AVAudioSession sharedInstance] setActive:(active != 0)
			                                    withOptions:(AVAudioSessionSetActiveOptions)options
			                                          error:&e];
		}
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static int avs_get_category(void) {
	@autoreleasepool {
		return avs_category_index([AVAudioSession sharedInstance].category);
	}
}

static unsigned long avs_get_category_options(void) {
	return (unsigned long)[AVAudioSession sharedInstance].categoryOptions;
}

static int avs_get_mode(void) {
	@autoreleasepool {
		return avs_mode_index([AVAudioSession sharedInstance].mode);
	}
}

static int avs_other_audio_playing(void) {
	return [AVAudioSession sharedInstance].isOtherAudioPlaying ? 1 : 0;
}

static int avs_set_preferred_sample_rate(double hz, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok = [[AVAudioSession sharedInstance] setPreferredSampleRate:hz error:&e];
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static int avs_set_preferred_io_buffer_duration(double seconds, avs_error *err) {
	@autoreleasepool {
		NSError *e = nil;
		BOOL ok = [[AVAudioSession sharedInstance] setPreferredIOBufferDuration:seconds error:&e];
		if (!ok) {
			avs_fill_error(err, e);
		}
		return ok ? 1 : 0;
	}
}

static avs_hardware avs_get_hardware(void) {
	AVAudioSession *s = [AVAudioSession sharedInstance];
	avs_hardware h;
	h.sampleRate = s.sampleRate;
	h.preferredSampleRate = s.preferredSampleRate;
	h.ioBufferDuration = s.IOBufferDuration;
	h.preferredIOBufferDuration = s.preferredIOBufferDuration;
	h.outputLatency = s.outputLatency;
	h.inputLatency = s.inputLatency;
	return h;
}

static NSArray *avs_ports(NSArray<AVAudioSessionPortDescription *> *ports) {
	NSMutableArray *out = [NSMutableArray arrayWithCapacity:ports.count];
	for (AVAudioSessionPortDescription *p in ports) {
		[out addObject:@{
			@"type": p.portType ?: @"",
			@"name": p.portName ?: @"",
			@"uid": p.UID ?: @"",
			@"channels": @(p.channels.count),
		}];
	}
	return out;
}

static char *avs_current_route(void) {
	@autoreleasepool {
		AVAudioSessionRouteDescription *route = [AVAudioSession sharedInstance].currentRoute;
		NSDictionary *result = @{
			@"success": @YES,
			@"route": @{
				@"inputs": avs_ports(route.inputs),
				@"outputs": avs_ports(route.outputs),
			},
		};
		NSError *e = nil;
		NSData *data = [NSJSONSerialization dataWithJSONObject:result options:0 error:&e];
		if (data == nil) {
			NSString *msg = e.localizedDescription ?: @"route serialization failed";
			data = [NSJSONSerialization dataWithJSONObject:@{@"success": @NO, @"error": msg} options:0 error:nil];
		}
		NSString *json = [[NSString alloc] initWithData:data encoding:NSUTF8StringEncoding];
		return strdup([json UTF8String]);
	}
}
*/
import "C"
import (
	"fmt"
	"time"
	"unsafe"
)

type nativeSession struct{}

func nativeBackend() Backend {
	return nativeSession{}
}

// takeError converts and frees a filled avs_error.
func takeError(e *C.avs_error) error {
	defer C.free(unsafe.Pointer(e.domain))
	defer C.free(unsafe.Pointer(e.message))
	err := &Error{Code: ErrorCode(e.code)}
	if e.domain != nil {
		err.Domain = C.GoString(e.domain)
	}
	if e.message != nil {
		err.Message = C.GoString(e.message)
	}
	return err
}

func result(ok C.int, e *C.avs_error) error {
	if ok != 0 {
		return nil
	}
	return takeError(e)
}

func (nativeSession) SetCategory(c Category) error {
	var e C.avs_error
	return result(C.avs_set_category(C.int(c), &e), &e)
}

func (nativeSession) SetCategoryWithOptions(c Category, o CategoryOptions) error {
	var e C.avs_error
	return result(C.avs_set_category_options(C.int(c), C.ulong(o), &e), &e)
}

func (nativeSession) SetCategoryModeOptions(c Category, m Mode, o CategoryOptions) error {
	var e C.avs_error
	return result(C.avs_set_category_mode_options(C.int(c), C.int(m), C.ulong(o), &e), &e)
}

func (nativeSession) SetMode(m Mode) error {
	var e C.avs_error
	return result(C.avs_set_mode(C.int(m), &e), &e)
}

func (nativeSession) SetActive(active bool, o SetActiveOptions) error {
	var e C.avs_error
	flag := C.int(0)
	if active {
		flag = 1
	}
	return result(C.avs_set_active(flag, C.ulong(o), &e), &e)
}

func (nativeSession) Category() (Category, error) {
	idx := int(C.avs_get_category())
	if idx < 0 {
		return 0, fmt.Errorf("%w: not in the category table", ErrUnknownCategory)
	}
	return Category(idx), nil
}

func (nativeSession) CategoryOptions() (CategoryOptions, error) {
	return CategoryOptions(C.avs_get_category_options()), nil
}

func (nativeSession) Mode() (Mode, error) {
	idx := int(C.avs_get_mode())
	if idx < 0 {
		return 0, fmt.Errorf("%w: not in the mode table", ErrUnknownMode)
	}
	return Mode(idx), nil
}

func (nativeSession) OtherAudioPlaying() (bool, error) {
	return C.avs_other_audio_playing() != 0, nil
}

func (nativeSession) SetPreferredSampleRate(hz float64) error {
	var e C.avs_error
	return result(C.avs_set_preferred_sample_rate(C.double(hz), &e), &e)
}

func (nativeSession) SetPreferredIOBufferDuration(d time.Duration) error {
	var e C.avs_error
	return result(C.avs_set_preferred_io_buffer_duration(C.double(d.Seconds()), &e), &e)
}

func (nativeSession) Hardware() (Hardware, error) {
	h := C.avs_get_hardware()
	return Hardware{
		SampleRate:                float64(h.sampleRate),
		PreferredSampleRate:       float64(h.preferredSampleRate),
		IOBufferDuration:          seconds(float64(h.ioBufferDuration)),
		PreferredIOBufferDuration: seconds(float64(h.preferredIOBufferDuration)),
		OutputLatency:             seconds(float64(h.outputLatency)),
		InputLatency:              seconds(float64(h.inputLatency)),
	}, nil
}

func (nativeSession) CurrentRoute() (Route, error) {
	cJSON := C.avs_current_route()
	defer C.free(unsafe.Pointer(cJSON))
	return parseRoute([]byte(C.GoString(cJSON)))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
