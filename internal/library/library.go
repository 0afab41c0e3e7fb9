// package library reads Apple Music/iTunes XML library exports and extracts
// playlist membership as ordered [models.Song] lists.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"howett.net/plist"

	"songcal/internal/models"
	"songcal/internal/shared"
)

// PIDPrefix addresses a playlist by persistent ID instead of name, e.g.
// "PID:BBE2197D42966E62".
const PIDPrefix = "PID:"

type trackRecord struct {
	Name         string `plist:"Name"`
	Artist       string `plist:"Artist"`
	Album        string `plist:"Album"`
	PersistentID string `plist:"Persistent ID"`
}

type playlistItemRecord struct {
	TrackID int `plist:"Track ID"`
}

type playlistRecord struct {
	Name         string               `plist:"Name"`
	PersistentID string               `plist:"Playlist Persistent ID"`
	Items        []playlistItemRecord `plist:"Playlist Items"`
}

type libraryDoc struct {
	Tracks    map[string]trackRecord `plist:"Tracks"`
	Playlists []playlistRecord       `plist:"Playlists"`
}

// Library is a parsed library export.
type Library struct {
	doc    libraryDoc
	logger *log.Logger
}

// FindFile probes the well-known library export locations for filename and
// returns the first that exists: ~/Music, ~/Music/iTunes,
// ~/Music/Music/Library, then the current directory.
func FindFile(filename string) (string, error) {
	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, "Music", filename),
			filepath.Join(home, "Music", "iTunes", filename),
			filepath.Join(home, "Music", "Music", "Library", filename),
		)
	}
	candidates = append(candidates, filename)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", shared.ErrLibraryNotFound, filename)
}

// Open reads and parses a library export from path.
func Open(path string, logger *log.Logger) (*Library, error) {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryNotFound, err)
	}

	var doc libraryDoc
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse library export: %w", err)
	}

	return &Library{doc: doc, logger: logger}, nil
}

// PlaylistSongs returns the ordered songs of one playlist, addressed by name
// or by "PID:<persistent id>".
//
// Duplicate names resolve to the playlist with the most tracks. Duplicate
// persistent IDs within the playlist are collapsed first-occurrence-wins;
// later occurrences are logged and dropped.
func (l *Library) PlaylistSongs(nameOrPID string) ([]models.Song, error) {
	target, err := l.findPlaylist(nameOrPID)
	if err != nil {
		return nil, err
	}

	songs := make([]models.Song, 0, len(target.Items))
	seen := make(map[string]bool, len(target.Items))

	for _, item := range target.Items {
		record, ok := l.doc.Tracks[strconv.Itoa(item.TrackID)]
		if !ok {
			continue
		}

		song := songFromRecord(record)
		if seen[song.PID] {
			l.logger.Warn("duplicate track in playlist, dropping", "name", song.Name, "pid", song.PID)
			continue
		}
		seen[song.PID] = true
		songs = append(songs, song)
	}

	return songs, nil
}

// findPlaylist resolves nameOrPID to a single playlist record.
func (l *Library) findPlaylist(nameOrPID string) (*playlistRecord, error) {
	if strings.HasPrefix(nameOrPID, PIDPrefix) {
		pid := strings.TrimPrefix(nameOrPID, PIDPrefix)
		for i := range l.doc.Playlists {
			if l.doc.Playlists[i].PersistentID == pid {
				return &l.doc.Playlists[i], nil
			}
		}
		return nil, fmt.Errorf("%w: persistent ID %s", shared.ErrPlaylistNotFound, pid)
	}

	var best *playlistRecord
	matches := 0
	for i := range l.doc.Playlists {
		pl := &l.doc.Playlists[i]
		if strings.TrimSpace(pl.Name) != nameOrPID {
			continue
		}
		matches++
		if best == nil || len(pl.Items) > len(best.Items) {
			best = pl
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, nameOrPID)
	}
	if matches > 1 {
		l.logger.Warn("multiple playlists share the name, using the largest",
			"name", nameOrPID, "matches", matches, "tracks", len(best.Items))
	}
	return best, nil
}

func songFromRecord(record trackRecord) models.Song {
	song := models.Song{
		Name:   record.Name,
		Artist: record.Artist,
		Album:  record.Album,
		PID:    record.PersistentID,
	}
	if song.Name == "" {
		song.Name = "Unknown"
	}
	if song.Artist == "" {
		song.Artist = "Unknown Artist"
	}
	if song.Album == "" {
		song.Album = "Unknown Album"
	}
	if song.PID == "" {
		song.PID = "Unknown PID"
	}
	return song
}
