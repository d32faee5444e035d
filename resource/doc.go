// Package resource defines the decoded asset types held by the resource
// manager and the decoders that produce them.
//
// A Decoder never returns payload bytes of its own. Once it knows how large
// the decoded payload is, it asks the Placer for that much space and writes
// the payload straight into allocator memory. Sound samples are converted
// into place as they stream; images and glTF buffers come back from their
// libraries on the heap and are converted or copied into the payload.
//
// Built-in decoders, by extension:
//
//	.png .jpg .jpeg .gif .bmp .tiff .tif .webp  image, RGBA8
//	.tga .dds .hdr                              image, RGBA8
//	.gltf .glb                                  model, glTF 2.0 buffers
//	.wav .ogg                                   sound, interleaved float32 stereo
package resource
