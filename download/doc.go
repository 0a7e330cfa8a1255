// Package download transfers a single remote resource to a local file,
// reporting progress and exactly one terminal outcome to an [Observer].
//
// # Running a Task
//
// A [Worker] pulls bytes from a [Source] (see the
// [github.com/adamwoolhether/fetcher/client] package for the HTTP
// implementation) and runs each [Task] through the same protocol:
//
//	w, err := download.NewWorker(src, obs,
//		download.WithTransferConfig(download.TransferConfig{
//			ChunkSize:  32 << 10,
//			MaxRetries: 3,
//		}),
//	)
//	out := w.Run(ctx, download.NewTask(url, "/tmp/file.bin"))
//
// Cancellation of ctx, or a non-nil [Observer.CheckCancelled], stops the
// task at the next chunk boundary. Every retry restarts from byte zero
// and truncates the destination first.
//
// # Batches
//
// [Queue] runs many tasks concurrently with an optional limit:
//
//	q := download.NewQueue(4)
//	for _, t := range tasks {
//		q.Start(ctx, w, t)
//	}
//	err := q.Wait()
package download
