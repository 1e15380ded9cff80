// Package progress waits for a file that an external download manager is
// producing and reports how far along it is.
//
// Progress comes from a Source. LogSource infers it from the download
// manager's own log files: the newest logs in a directory are matched
// against the target path by name similarity, the total size is read from
// the Content-Range line and the downloaded byte count from the last
// progress line. Watcher.Wait first retries total-size discovery with
// exponential backoff, then polls at an interval chosen from the file size
// until the target appears, the context ends, or the timeout elapses.
package progress
