// Package sdmmc defines the capabilities consumed by the SD card logger.
//
// A card carries one or more FAT volumes. Card and filesystem drivers
// live elsewhere: a raw disk image, an in-memory card, or a real card
// behind a bus adapter all plug in through BlockDevice and Controller.
package sdmmc
