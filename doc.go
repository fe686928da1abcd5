// Package avfaudio drives an AVAudioSession from Go.
//
// The session subpackage is a thin binding: every call forwards to the
// shared AVAudioSession and returns its NSError. This package adds a
// Controller on top that runs session calls on a single dispatcher
// goroutine, tracks activation, and can save and restore session state
// as JSON.
//
//	c, err := avfaudio.NewController(avfaudio.ControllerConfig{})
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	err = c.With(ctx, session.Configuration{
//		Category: session.PlayAndRecord,
//		Options:  session.DefaultToSpeaker | session.AllowBluetoothA2DP,
//	}, record)
package avfaudio
