package id3

import (
	"github.com/bogem/id3v2/v2"
	"github.com/ppartarr/mp3renamer/entity"
)

// File is the ID3v2 tag container of an mp3 file
type File struct {
	*id3v2.Tag
}

func Open(path string, options id3v2.Options) (*File, error) {
	tag, err := id3v2.Open(path, options)
	if err != nil {
		return nil, err
	}
	return &File{tag}, nil
}

// SetRelease sets artist and album, and the year frame
// only if the release year is known: an unknown year
// leaves whatever the file already carries
func (file *File) SetRelease(release *entity.Release) {
	file.SetArtist(release.Artist)
	file.SetAlbum(release.Album)
	if release.HasYear() {
		file.SetYear(release.Year)
	}
}

// Write opens the tag container at path, applies release and saves
func Write(path string, release *entity.Release) error {
	file, err := Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer file.Close()

	file.SetDefaultEncoding(id3v2.EncodingUTF8)
	file.SetRelease(release)
	return file.Save()
}
